package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type SceneMasterHandler struct {
  sceneService services.SceneMasterService
}

func NewSceneMasterHandler(sceneService services.SceneMasterService) *SceneMasterHandler {
  return &SceneMasterHandler{sceneService: sceneService}
}

func (sh *SceneMasterHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Title       string `json:"title"`
    Description string `json:"description"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  scene, err := sh.sceneService.CreateScene(c.Request.Context(), rd.UserID, &types.SceneMaster{
    Title:       req.Title,
    Description: req.Description,
  })
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"scene_master": scene})
}

func (sh *SceneMasterHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sceneID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid scene master id")
    return
  }
  scene, err := sh.sceneService.GetScene(c.Request.Context(), rd.UserID, sceneID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"scene_master": scene})
}

func (sh *SceneMasterHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  scenes, err := sh.sceneService.ListScenes(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"scene_masters": scenes})
}

func (sh *SceneMasterHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sceneID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid scene master id")
    return
  }
  var fields map[string]any
  if err := c.ShouldBindJSON(&fields); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  scene, err := sh.sceneService.UpdateScene(c.Request.Context(), rd.UserID, sceneID, fields)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"scene_master": scene})
}

func (sh *SceneMasterHandler) UploadImage(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sceneID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid scene master id")
    return
  }
  data, contentType, err := readUploadedImage(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  scene, err := sh.sceneService.UploadSceneImage(c.Request.Context(), rd.UserID, sceneID, contentType, data)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"scene_master": scene})
}

func (sh *SceneMasterHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sceneID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid scene master id")
    return
  }
  if err := sh.sceneService.DeleteScene(c.Request.Context(), rd.UserID, sceneID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
