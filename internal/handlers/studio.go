package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

type StudioHandler struct {
  studioService services.StudioService
}

func NewStudioHandler(studioService services.StudioService) *StudioHandler {
  return &StudioHandler{studioService: studioService}
}

func (sh *StudioHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Title       string `json:"title"`
    Description string `json:"description"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  studio, err := sh.studioService.CreateStudio(c.Request.Context(), rd.UserID, req.Title, req.Description)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"studio": studio})
}

func (sh *StudioHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  studioID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid studio id")
    return
  }
  studio, err := sh.studioService.GetStudio(c.Request.Context(), rd.UserID, studioID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"studio": studio})
}

func (sh *StudioHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  studios, err := sh.studioService.ListStudios(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"studios": studios})
}

func (sh *StudioHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  studioID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid studio id")
    return
  }
  var fields map[string]any
  if err := c.ShouldBindJSON(&fields); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  studio, err := sh.studioService.UpdateStudio(c.Request.Context(), rd.UserID, studioID, fields)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"studio": studio})
}

func (sh *StudioHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  studioID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid studio id")
    return
  }
  if err := sh.studioService.DeleteStudio(c.Request.Context(), rd.UserID, studioID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
