package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type PropMasterHandler struct {
  propService services.PropMasterService
}

func NewPropMasterHandler(propService services.PropMasterService) *PropMasterHandler {
  return &PropMasterHandler{propService: propService}
}

func (ph *PropMasterHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Title       string `json:"title"`
    Description string `json:"description"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  prop, err := ph.propService.CreateProp(c.Request.Context(), rd.UserID, &types.PropMaster{
    Title:       req.Title,
    Description: req.Description,
  })
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"prop_master": prop})
}

func (ph *PropMasterHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  propID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid prop master id")
    return
  }
  prop, err := ph.propService.GetProp(c.Request.Context(), rd.UserID, propID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"prop_master": prop})
}

func (ph *PropMasterHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  props, err := ph.propService.ListProps(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"prop_masters": props})
}

func (ph *PropMasterHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  propID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid prop master id")
    return
  }
  var fields map[string]any
  if err := c.ShouldBindJSON(&fields); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  prop, err := ph.propService.UpdateProp(c.Request.Context(), rd.UserID, propID, fields)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"prop_master": prop})
}

func (ph *PropMasterHandler) UploadImage(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  propID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid prop master id")
    return
  }
  data, contentType, err := readUploadedImage(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  prop, err := ph.propService.UploadPropImage(c.Request.Context(), rd.UserID, propID, contentType, data)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"prop_master": prop})
}

func (ph *PropMasterHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  propID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid prop master id")
    return
  }
  if err := ph.propService.DeleteProp(c.Request.Context(), rd.UserID, propID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
