package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/utils"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLogger := log.With("middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth resolves the acting user from either a session JWT or an API
// key. API keys are recognized by their prefix; everything else is treated as
// a JWT.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing or invalid token"})
      return
    }

    var ctx = c.Request.Context()
    var err error
    if utils.LooksLikeAPIKey(tokenString) {
      ctx, err = am.authService.SetContextFromAPIKey(ctx, tokenString)
    } else {
      ctx, err = am.authService.SetContextFromToken(ctx, tokenString)
    }
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
      return
    }

    c.Request = c.Request.WithContext(ctx)
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
      return
    }
    c.Next()
  }
}

func extractToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  if cookieToken, err := c.Cookie("session_token"); err == nil && cookieToken != "" {
    return cookieToken
  }
  // Query token kept for the streaming proxy, where headers are awkward for
  // media elements.
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  return ""
}
