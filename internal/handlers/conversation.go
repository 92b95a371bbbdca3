package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type ConversationHandler struct {
  conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
  return &ConversationHandler{conversationService: conversationService}
}

type conversationRequest struct {
  Title string                   `json:"title"`
  Lines []types.ConversationLine `json:"lines"`
}

func (ch *ConversationHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req conversationRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  conversation, err := ch.conversationService.CreateConversation(c.Request.Context(), rd.UserID, req.Title, req.Lines)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"conversation": conversation})
}

func (ch *ConversationHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  conversationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid conversation id")
    return
  }
  conversation, err := ch.conversationService.GetConversation(c.Request.Context(), rd.UserID, conversationID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"conversation": conversation})
}

func (ch *ConversationHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  conversations, err := ch.conversationService.ListConversations(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"conversations": conversations})
}

func (ch *ConversationHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  conversationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid conversation id")
    return
  }
  var req conversationRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  conversation, err := ch.conversationService.UpdateConversation(c.Request.Context(), rd.UserID, conversationID, req.Title, req.Lines)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"conversation": conversation})
}

// GenerateAudio synthesizes speech line by line. Per-line failures come back
// in errors alongside the updated conversation; the call as a whole still
// succeeds.
func (ch *ConversationHandler) GenerateAudio(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  conversationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid conversation id")
    return
  }
  conversation, lineErrors, err := ch.conversationService.GenerateAudio(c.Request.Context(), rd.UserID, conversationID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"conversation": conversation, "errors": lineErrors})
}

func (ch *ConversationHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  conversationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid conversation id")
    return
  }
  if err := ch.conversationService.DeleteConversation(c.Request.Context(), rd.UserID, conversationID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
