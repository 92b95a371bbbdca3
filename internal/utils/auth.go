package utils

import (
  "crypto/rand"
  "crypto/sha256"
  "encoding/hex"
  "fmt"
  "strings"

  "golang.org/x/crypto/bcrypt"
)

func HashPassword(plain string) (string, error) {
  hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
  if err != nil {
    return "", fmt.Errorf("Failed to hash password: %w", err)
  }
  return string(hashed), nil
}

func CheckPassword(hashed, plain string) error {
  return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// API keys are presented as "kzk_<random hex>" and stored server-side only as
// the SHA-256 hex digest of the full plaintext key.
const APIKeyPrefix = "kzk_"

func GenerateAPIKey() (string, error) {
  raw := make([]byte, 24)
  if _, err := rand.Read(raw); err != nil {
    return "", fmt.Errorf("Failed to generate api key: %w", err)
  }
  return APIKeyPrefix + hex.EncodeToString(raw), nil
}

func HashAPIKey(plain string) string {
  sum := sha256.Sum256([]byte(plain))
  return hex.EncodeToString(sum[:])
}

func LooksLikeAPIKey(token string) bool {
  return strings.HasPrefix(token, APIKeyPrefix)
}

func NormalizeEmail(email string) string {
  return strings.ToLower(strings.TrimSpace(email))
}
