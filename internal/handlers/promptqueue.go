package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type PromptQueueHandler struct {
  queueService services.PromptQueueService
}

func NewPromptQueueHandler(queueService services.PromptQueueService) *PromptQueueHandler {
  return &PromptQueueHandler{queueService: queueService}
}

func (qh *PromptQueueHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Prompt         string         `json:"prompt"`
    NegativePrompt string         `json:"negative_prompt"`
    Model          string         `json:"model"`
    AspectRatio    string         `json:"aspect_ratio"`
    EnhancePrompt  string         `json:"enhance_prompt"`
    Images         datatypes.JSON `json:"images"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  item := &types.PromptQueueItem{
    Prompt:         req.Prompt,
    NegativePrompt: req.NegativePrompt,
    Model:          req.Model,
    AspectRatio:    req.AspectRatio,
    EnhancePrompt:  req.EnhancePrompt,
    Images:         req.Images,
  }
  created, err := qh.queueService.CreateItem(c.Request.Context(), rd.UserID, item)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"item": created})
}

func (qh *PromptQueueHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid item id")
    return
  }
  item, err := qh.queueService.GetItem(c.Request.Context(), rd.UserID, itemID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"item": item})
}

func (qh *PromptQueueHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  items, err := qh.queueService.ListItems(c.Request.Context(), rd.UserID, c.Query("status"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"items": items})
}

// Execute runs one pending item synchronously inside this request. Items that
// are already processing, completed, failed or cancelled get a 400. Provider
// failures mark the item failed and surface the provider message as details.
func (qh *PromptQueueHandler) Execute(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid item id")
    return
  }
  item, err := qh.queueService.ExecuteItem(c.Request.Context(), rd.UserID, itemID)
  if err != nil {
    if err == services.ErrQueueItemNotPending || err == services.ErrNotFound {
      RespondServiceError(c, err)
      return
    }
    RespondError(c, http.StatusInternalServerError, "queue item execution failed", err.Error())
    return
  }
  RespondOK(c, gin.H{"item": item})
}

func (qh *PromptQueueHandler) ExecuteBatch(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    ItemIDs []uuid.UUID `json:"item_ids"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || len(req.ItemIDs) == 0 {
    RespondError(c, http.StatusBadRequest, "item_ids is required")
    return
  }
  completed, batchErrors := qh.queueService.ExecuteBatch(c.Request.Context(), rd.UserID, req.ItemIDs)
  RespondOK(c, gin.H{"items": completed, "errors": batchErrors})
}

func (qh *PromptQueueHandler) Cancel(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid item id")
    return
  }
  if err := qh.queueService.CancelItem(c.Request.Context(), rd.UserID, itemID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}

func (qh *PromptQueueHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  itemID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid item id")
    return
  }
  if err := qh.queueService.DeleteItem(c.Request.Context(), rd.UserID, itemID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
