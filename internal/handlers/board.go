package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

type BoardHandler struct {
  boardService services.BoardService
}

func NewBoardHandler(boardService services.BoardService) *BoardHandler {
  return &BoardHandler{boardService: boardService}
}

func (bh *BoardHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    StudioID   uuid.UUID  `json:"studio_id"`
    Title      string     `json:"title"`
    WorkflowID *uuid.UUID `json:"workflow_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  board, err := bh.boardService.CreateBoard(c.Request.Context(), rd.UserID, req.StudioID, req.Title, req.WorkflowID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"board": board})
}

func (bh *BoardHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  boardID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid board id")
    return
  }
  board, err := bh.boardService.GetBoard(c.Request.Context(), rd.UserID, boardID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"board": board})
}

func (bh *BoardHandler) ListByStudio(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  studioID, err := uuid.Parse(c.Query("studio_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid studio id")
    return
  }
  boards, err := bh.boardService.ListBoards(c.Request.Context(), rd.UserID, studioID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"boards": boards})
}

func (bh *BoardHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  boardID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid board id")
    return
  }
  var fields map[string]any
  if err := c.ShouldBindJSON(&fields); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  board, err := bh.boardService.UpdateBoard(c.Request.Context(), rd.UserID, boardID, fields)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"board": board})
}

func (bh *BoardHandler) Reorder(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    StudioID uuid.UUID   `json:"studio_id"`
    BoardIDs []uuid.UUID `json:"board_ids"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  if err := bh.boardService.ReorderBoards(c.Request.Context(), rd.UserID, req.StudioID, req.BoardIDs); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}

func (bh *BoardHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  boardID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid board id")
    return
  }
  if err := bh.boardService.DeleteBoard(c.Request.Context(), rd.UserID, boardID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
