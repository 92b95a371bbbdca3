package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

type OutputHandler struct {
  outputService services.OutputService
}

func NewOutputHandler(outputService services.OutputService) *OutputHandler {
  return &OutputHandler{outputService: outputService}
}

func (oh *OutputHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  outputID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid output id")
    return
  }
  output, err := oh.outputService.GetOutput(c.Request.Context(), rd.UserID, outputID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"output": output})
}

func (oh *OutputHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  outputs, err := oh.outputService.ListOutputs(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"outputs": outputs})
}

func (oh *OutputHandler) Delete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  outputID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid output id")
    return
  }
  if err := oh.outputService.DeleteOutput(c.Request.Context(), rd.UserID, outputID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
