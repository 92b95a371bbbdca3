package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

// Every response carries the success flag. Failures are
// {success:false, error, details?}; details holds the upstream provider
// message when one exists.

func RespondOK(c *gin.Context, payload gin.H) {
  body := gin.H{"success": true}
  for k, v := range payload {
    body[k] = v
  }
  c.JSON(http.StatusOK, body)
}

func RespondError(c *gin.Context, status int, message string, details ...string) {
  body := gin.H{"success": false, "error": message}
  if len(details) > 0 && details[0] != "" {
    body["details"] = details[0]
  }
  c.JSON(status, body)
}

// RespondServiceError maps the service layer's sentinel errors onto HTTP
// statuses; anything unrecognized is a 500 with the error text as details.
func RespondServiceError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, services.ErrNotFound):
    RespondError(c, http.StatusNotFound, "resource not found")
  case errors.Is(err, services.ErrQueueItemNotPending):
    RespondError(c, http.StatusBadRequest, err.Error())
  default:
    RespondError(c, http.StatusInternalServerError, "internal error", err.Error())
  }
}
