package handlers

import (
  "github.com/gin-gonic/gin"
  "gorm.io/gorm"
)

type HealthcheckHandler struct {
  db *gorm.DB
}

func NewHealthcheckHandler(db *gorm.DB) *HealthcheckHandler {
  return &HealthcheckHandler{db: db}
}

func (hh *HealthcheckHandler) Healthcheck(c *gin.Context) {
  sqlDB, err := hh.db.DB()
  if err != nil {
    RespondError(c, 503, "database unavailable", err.Error())
    return
  }
  if err := sqlDB.PingContext(c.Request.Context()); err != nil {
    RespondError(c, 503, "database unavailable", err.Error())
    return
  }
  RespondOK(c, gin.H{"status": "ok"})
}
