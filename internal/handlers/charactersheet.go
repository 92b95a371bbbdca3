package handlers

import (
  "io"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type CharacterSheetHandler struct {
  sheetService services.CharacterSheetService
}

func NewCharacterSheetHandler(sheetService services.CharacterSheetService) *CharacterSheetHandler {
  return &CharacterSheetHandler{sheetService: sheetService}
}

func (ch *CharacterSheetHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Name        string `json:"name"`
    Description string `json:"description"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  sheet, err := ch.sheetService.CreateSheet(c.Request.Context(), rd.UserID, &types.CharacterSheet{
    Name:        req.Name,
    Description: req.Description,
  })
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"character_sheet": sheet})
}

func (ch *CharacterSheetHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sheetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid character sheet id")
    return
  }
  sheet, err := ch.sheetService.GetSheet(c.Request.Context(), rd.UserID, sheetID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"character_sheet": sheet})
}

func (ch *CharacterSheetHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sheets, err := ch.sheetService.ListSheets(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"character_sheets": sheets})
}

func (ch *CharacterSheetHandler) Update(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sheetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid character sheet id")
    return
  }
  var fields map[string]any
  if err := c.ShouldBindJSON(&fields); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  sheet, err := ch.sheetService.UpdateSheet(c.Request.Context(), rd.UserID, sheetID, fields)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"character_sheet": sheet})
}

func (ch *CharacterSheetHandler) UploadImage(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sheetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid character sheet id")
    return
  }
  data, contentType, err := readUploadedImage(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  sheet, err := ch.sheetService.UploadSheetImage(c.Request.Context(), rd.UserID, sheetID, contentType, data)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"character_sheet": sheet})
}

func (ch *CharacterSheetHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  sheetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid character sheet id")
    return
  }
  if err := ch.sheetService.DeleteSheet(c.Request.Context(), rd.UserID, sheetID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}

// readUploadedImage accepts a multipart "file" field or, failing that, a raw
// request body with a Content-Type header.
func readUploadedImage(c *gin.Context) ([]byte, string, error) {
  if fileHeader, err := c.FormFile("file"); err == nil {
    f, openErr := fileHeader.Open()
    if openErr != nil {
      return nil, "", openErr
    }
    defer f.Close()
    data, readErr := io.ReadAll(f)
    if readErr != nil {
      return nil, "", readErr
    }
    return data, fileHeader.Header.Get("Content-Type"), nil
  }
  data, readErr := io.ReadAll(c.Request.Body)
  if readErr != nil {
    return nil, "", readErr
  }
  return data, c.ContentType(), nil
}
