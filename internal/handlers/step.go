package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

type StepHandler struct {
  stepService     services.StepService
  workflowService services.WorkflowService
}

func NewStepHandler(stepService services.StepService, workflowService services.WorkflowService) *StepHandler {
  return &StepHandler{stepService: stepService, workflowService: workflowService}
}

func (sh *StepHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    BoardID    uuid.UUID `json:"board_id"`
    WorkflowID uuid.UUID `json:"workflow_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  step, err := sh.stepService.CreateStep(c.Request.Context(), rd.UserID, req.BoardID, req.WorkflowID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"step": step})
}

func (sh *StepHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  stepID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid step id")
    return
  }
  step, err := sh.stepService.GetStep(c.Request.Context(), rd.UserID, stepID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"step": step})
}

func (sh *StepHandler) ListByBoard(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  boardID, err := uuid.Parse(c.Query("board_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid board id")
    return
  }
  steps, err := sh.stepService.ListSteps(c.Request.Context(), rd.UserID, boardID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"steps": steps})
}

// ExecuteNode runs one node of the step's workflow. The node result is merged
// into the step's output_data and also returned directly; a provider failure
// comes back as a success:false node result with a 200, since the step row
// itself was updated.
func (sh *StepHandler) ExecuteNode(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  stepID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid step id")
    return
  }
  var req struct {
    NodeID string `json:"node_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.NodeID == "" {
    RespondError(c, http.StatusBadRequest, "node_id is required")
    return
  }
  result, err := sh.workflowService.ExecuteNode(c.Request.Context(), rd.UserID, stepID, req.NodeID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"result": result})
}

func (sh *StepHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  stepID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid step id")
    return
  }
  if err := sh.stepService.DeleteStep(c.Request.Context(), rd.UserID, stepID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
