package testutil

import (
  "context"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

func SeedUser(tb testing.TB, tx *gorm.DB, email string) *types.User {
  tb.Helper()
  user := &types.User{
    ID:          uuid.New(),
    Email:       email,
    Password:    "x",
    DisplayName: "Test User",
    CreatedAt:   time.Now(),
    UpdatedAt:   time.Now(),
  }
  if err := tx.WithContext(context.Background()).Create(user).Error; err != nil {
    tb.Fatalf("seed user: %v", err)
  }
  return user
}

func SeedStudio(tb testing.TB, tx *gorm.DB, userID uuid.UUID) *types.Studio {
  tb.Helper()
  studio := &types.Studio{
    ID:        uuid.New(),
    UserID:    userID,
    Title:     "Test Studio",
    CreatedAt: time.Now(),
    UpdatedAt: time.Now(),
  }
  if err := tx.WithContext(context.Background()).Create(studio).Error; err != nil {
    tb.Fatalf("seed studio: %v", err)
  }
  return studio
}

func SeedQueueItem(tb testing.TB, tx *gorm.DB, userID uuid.UUID, status string) *types.PromptQueueItem {
  tb.Helper()
  item := &types.PromptQueueItem{
    ID:            uuid.New(),
    UserID:        userID,
    Prompt:        "a quiet harbor at dawn",
    EnhancePrompt: types.EnhanceModeNone,
    Status:        status,
    CreatedAt:     time.Now(),
    UpdatedAt:     time.Now(),
  }
  if err := tx.WithContext(context.Background()).Create(item).Error; err != nil {
    tb.Fatalf("seed queue item: %v", err)
  }
  return item
}
