package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

type TagHandler struct {
  tagService services.TagService
}

func NewTagHandler(tagService services.TagService) *TagHandler {
  return &TagHandler{tagService: tagService}
}

func (th *TagHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Name  string `json:"name"`
    Color string `json:"color"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  tag, err := th.tagService.CreateTag(c.Request.Context(), rd.UserID, req.Name, req.Color)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"tag": tag})
}

func (th *TagHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tags, err := th.tagService.ListTags(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"tags": tags})
}

func (th *TagHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tagID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid tag id")
    return
  }
  var fields map[string]any
  if err := c.ShouldBindJSON(&fields); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  tag, err := th.tagService.UpdateTag(c.Request.Context(), rd.UserID, tagID, fields)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"tag": tag})
}

func (th *TagHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tagID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid tag id")
    return
  }
  if err := th.tagService.DeleteTag(c.Request.Context(), rd.UserID, tagID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}

type tagAssignmentRequest struct {
  EntityType string    `json:"entity_type"`
  EntityID   uuid.UUID `json:"entity_id"`
}

func (th *TagHandler) Assign(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tagID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid tag id")
    return
  }
  var req tagAssignmentRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  if err := th.tagService.AssignTag(c.Request.Context(), rd.UserID, tagID, req.EntityType, req.EntityID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}

func (th *TagHandler) Unassign(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tagID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid tag id")
    return
  }
  var req tagAssignmentRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  if err := th.tagService.UnassignTag(c.Request.Context(), rd.UserID, tagID, req.EntityType, req.EntityID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}

func (th *TagHandler) ListForEntity(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  entityID, err := uuid.Parse(c.Query("entity_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid entity id")
    return
  }
  entityType := c.Query("entity_type")
  if entityType == "" {
    RespondError(c, http.StatusBadRequest, "entity_type is required")
    return
  }
  tags, err := th.tagService.ListTagsForEntity(c.Request.Context(), rd.UserID, entityType, entityID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"tags": tags})
}

// BulkAssign tags many rows in one call; per-target failures are aggregated
// in errors instead of aborting the batch.
func (th *TagHandler) BulkAssign(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  tagID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid tag id")
    return
  }
  var req struct {
    Targets []services.TagTarget `json:"targets"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || len(req.Targets) == 0 {
    RespondError(c, http.StatusBadRequest, "targets is required")
    return
  }
  assigned, targetErrors := th.tagService.BulkAssign(c.Request.Context(), rd.UserID, tagID, req.Targets)
  RespondOK(c, gin.H{"assigned": assigned, "errors": targetErrors})
}
