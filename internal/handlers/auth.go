package handlers

import (
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Email       string `json:"email"`
    Password    string `json:"password"`
    DisplayName string `json:"display_name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  user, err := ah.authService.RegisterUser(c.Request.Context(), req.Email, req.Password, req.DisplayName)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondError(c, http.StatusUnauthorized, err.Error())
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.SetCookie("session_token", accessToken, expiresIn, "/", "", false, true)
  RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusUnauthorized, err.Error())
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.SetCookie("session_token", accessToken, expiresIn, "/", "", false, true)
  RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
    RespondError(c, http.StatusInternalServerError, err.Error())
    return
  }
  c.SetCookie("session_token", "", -1, "/", "", false, true)
  RespondOK(c, gin.H{})
}

func (ah *AuthHandler) CreateAPIKey(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  var req struct {
    Name      string     `json:"name"`
    ExpiresAt *time.Time `json:"expires_at"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid request body")
    return
  }
  key, plainKey, err := ah.authService.CreateAPIKey(c.Request.Context(), rd.UserID, req.Name, req.ExpiresAt)
  if err != nil {
    RespondError(c, http.StatusBadRequest, err.Error())
    return
  }
  // The plaintext key is shown exactly once.
  RespondOK(c, gin.H{"api_key": key, "key": plainKey})
}

func (ah *AuthHandler) ListAPIKeys(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  keys, err := ah.authService.ListAPIKeys(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"api_keys": keys})
}

func (ah *AuthHandler) RevokeAPIKey(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  keyID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid key id")
    return
  }
  if err := ah.authService.RevokeAPIKey(c.Request.Context(), rd.UserID, keyID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{})
}
