package handlers

import (
  "io"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

// StorageHandler is the only surface through which clients reach object
// storage: a signed-URL issuance endpoint and an authenticated streaming
// proxy. Object keys are namespaced by user id, so ownership is a prefix
// check.
type StorageHandler struct {
  log           *logger.Logger
  bucketService services.BucketService
}

func NewStorageHandler(log *logger.Logger, bucketService services.BucketService) *StorageHandler {
  return &StorageHandler{
    log:           log.With("handler", "StorageHandler"),
    bucketService: bucketService,
  }
}

func (st *StorageHandler) ownsKey(c *gin.Context, key string) bool {
  rd := requestdata.GetRequestData(c.Request.Context())
  return rd != nil && strings.HasPrefix(key, rd.UserID.String()+"/")
}

func (st *StorageHandler) SignedURL(c *gin.Context) {
  key := c.Query("key")
  if key == "" {
    RespondError(c, http.StatusBadRequest, "key is required")
    return
  }
  if !st.ownsKey(c, key) {
    RespondError(c, http.StatusNotFound, "resource not found")
    return
  }
  url, err := st.bucketService.SignedURL(c.Request.Context(), key)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "failed to sign url", err.Error())
    return
  }
  RespondOK(c, gin.H{"url": url})
}

// Stream proxies the object body through the app. Used where a client cannot
// attach headers to a media element and a signed URL is undesirable.
func (st *StorageHandler) Stream(c *gin.Context) {
  key := c.Query("key")
  if key == "" {
    RespondError(c, http.StatusBadRequest, "key is required")
    return
  }
  if !st.ownsKey(c, key) {
    RespondError(c, http.StatusNotFound, "resource not found")
    return
  }
  reader, contentType, err := st.bucketService.DownloadFile(c.Request.Context(), key)
  if err != nil {
    RespondError(c, http.StatusNotFound, "resource not found")
    return
  }
  defer reader.Close()

  if contentType == "" {
    contentType = "application/octet-stream"
  }
  c.Header("Content-Type", contentType)
  c.Status(http.StatusOK)
  if _, err := io.Copy(c.Writer, reader); err != nil {
    st.log.Warn("Stream aborted", "key", key, "error", err)
  }
}
