package utils

import (
  "strings"
  "testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
  hashed, err := HashPassword("correct horse battery staple")
  if err != nil {
    t.Fatalf("hash: %v", err)
  }
  if hashed == "correct horse battery staple" {
    t.Fatalf("expected hashed password to differ from plaintext")
  }
  if err := CheckPassword(hashed, "correct horse battery staple"); err != nil {
    t.Fatalf("expected matching password to verify: %v", err)
  }
  if err := CheckPassword(hashed, "wrong"); err == nil {
    t.Fatalf("expected mismatched password to fail")
  }
}

func TestGenerateAPIKey_FormatAndUniqueness(t *testing.T) {
  first, err := GenerateAPIKey()
  if err != nil {
    t.Fatalf("generate: %v", err)
  }
  if !strings.HasPrefix(first, APIKeyPrefix) {
    t.Fatalf("expected prefix %q, got %q", APIKeyPrefix, first)
  }
  if len(first) != len(APIKeyPrefix)+48 {
    t.Fatalf("unexpected key length: %d", len(first))
  }

  second, err := GenerateAPIKey()
  if err != nil {
    t.Fatalf("generate: %v", err)
  }
  if first == second {
    t.Fatalf("expected distinct keys")
  }
}

func TestHashAPIKey_Deterministic(t *testing.T) {
  key := "kzk_deadbeef"
  if HashAPIKey(key) != HashAPIKey(key) {
    t.Fatalf("expected stable hash for same input")
  }
  if HashAPIKey(key) == HashAPIKey("kzk_deadbeee") {
    t.Fatalf("expected different hashes for different keys")
  }
  if len(HashAPIKey(key)) != 64 {
    t.Fatalf("expected sha256 hex digest, got length %d", len(HashAPIKey(key)))
  }
}

func TestLooksLikeAPIKey(t *testing.T) {
  if !LooksLikeAPIKey("kzk_abc123") {
    t.Fatalf("expected kzk_ token to look like an api key")
  }
  if LooksLikeAPIKey("eyJhbGciOiJIUzI1NiJ9.payload.sig") {
    t.Fatalf("expected jwt not to look like an api key")
  }
}

func TestNormalizeEmail(t *testing.T) {
  if got := NormalizeEmail("  User@Example.COM "); got != "user@example.com" {
    t.Fatalf("unexpected normalized email: %q", got)
  }
}
