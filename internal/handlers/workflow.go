package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type WorkflowHandler struct {
  workflowService services.WorkflowService
}

func NewWorkflowHandler(workflowService services.WorkflowService) *WorkflowHandler {
  return &WorkflowHandler{workflowService: workflowService}
}

type workflowRequest struct {
  Name  string               `json:"name"`
  Nodes []types.WorkflowNode `json:"nodes"`
  Edges []types.WorkflowEdge `json:"edges"`
}

func (wh *WorkflowHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req workflowRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  workflow, err := wh.workflowService.CreateWorkflow(c.Request.Context(), rd.UserID, req.Name, req.Nodes, req.Edges)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"workflow": workflow})
}

func (wh *WorkflowHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  workflowID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid workflow id")
    return
  }
  workflow, err := wh.workflowService.GetWorkflow(c.Request.Context(), rd.UserID, workflowID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"workflow": workflow})
}

func (wh *WorkflowHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  workflows, err := wh.workflowService.ListWorkflows(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"workflows": workflows})
}

func (wh *WorkflowHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  workflowID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid workflow id")
    return
  }
  var req workflowRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  workflow, err := wh.workflowService.UpdateWorkflow(c.Request.Context(), rd.UserID, workflowID, req.Name, req.Nodes, req.Edges)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"workflow": workflow})
}

func (wh *WorkflowHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  workflowID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid workflow id")
    return
  }
  if err := wh.workflowService.DeleteWorkflow(c.Request.Context(), rd.UserID, workflowID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
