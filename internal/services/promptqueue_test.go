package services

import (
  "context"
  "errors"
  "fmt"
  "testing"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos/testutil"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

func newQueueServiceForTest(t *testing.T, tx *gorm.DB, gemini *fakeGeminiClient, bucket *fakeBucketService) PromptQueueService {
  t.Helper()
  log := testutil.Logger(t)
  return NewPromptQueueService(
    tx,
    log,
    repos.NewPromptQueueRepo(tx, log),
    repos.NewOutputRepo(tx, log),
    repos.NewCharacterSheetRepo(tx, log),
    gemini,
    bucket,
  )
}

func TestExecuteItem_CompletesAndRecordsOutput(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "queue-complete@example.com")
  item := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)

  gemini := &fakeGeminiClient{image: &GeneratedImage{MimeType: "image/png", Data: []byte("png-bytes")}}
  bucket := newFakeBucketService()
  qs := newQueueServiceForTest(t, tx, gemini, bucket)

  updated, err := qs.ExecuteItem(context.Background(), user.ID, item.ID)
  if err != nil {
    t.Fatalf("execute item: %v", err)
  }
  if updated.Status != types.QueueStatusCompleted {
    t.Fatalf("expected status completed, got %q", updated.Status)
  }
  if updated.OutputID == nil {
    t.Fatalf("expected output id to be set")
  }
  if updated.CompletedAt == nil {
    t.Fatalf("expected completed_at to be set")
  }

  key := fmt.Sprintf("%s/outputs/%s.png", user.ID, updated.OutputID)
  if _, ok := bucket.objects[key]; !ok {
    t.Fatalf("expected uploaded object at %q, have %v", key, bucket.objects)
  }

  outputs, err := repos.NewOutputRepo(tx, testutil.Logger(t)).GetByIDs(context.Background(), tx, []uuid.UUID{*updated.OutputID})
  if err != nil || len(outputs) != 1 {
    t.Fatalf("expected output row, got %v (err=%v)", outputs, err)
  }
  if outputs[0].StorageKey != key {
    t.Fatalf("expected storage key %q, got %q", key, outputs[0].StorageKey)
  }
}

func TestExecuteItem_RejectsNonPendingItem(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "queue-nonpending@example.com")
  item := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusProcessing)

  qs := newQueueServiceForTest(t, tx, &fakeGeminiClient{}, newFakeBucketService())

  _, err := qs.ExecuteItem(context.Background(), user.ID, item.ID)
  if !errors.Is(err, ErrQueueItemNotPending) {
    t.Fatalf("expected ErrQueueItemNotPending, got %v", err)
  }
}

func TestExecuteItem_ForeignItemIsNotFound(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  owner := testutil.SeedUser(t, tx, "queue-owner@example.com")
  intruder := testutil.SeedUser(t, tx, "queue-intruder@example.com")
  item := testutil.SeedQueueItem(t, tx, owner.ID, types.QueueStatusPending)

  qs := newQueueServiceForTest(t, tx, &fakeGeminiClient{}, newFakeBucketService())

  _, err := qs.ExecuteItem(context.Background(), intruder.ID, item.ID)
  if !errors.Is(err, ErrNotFound) {
    t.Fatalf("expected ErrNotFound, got %v", err)
  }
}

func TestExecuteItem_EnhancedPromptSurvivesImageFailure(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "queue-enhance@example.com")
  item := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)
  if err := tx.Model(&types.PromptQueueItem{}).Where("id = ?", item.ID).Update("enhance_prompt", types.EnhanceModeEnhance).Error; err != nil {
    t.Fatalf("set enhance mode: %v", err)
  }

  gemini := &fakeGeminiClient{
    textResponse: "a richly detailed harbor at dawn, volumetric light",
    imageErr:     errors.New("image model unavailable"),
  }
  qs := newQueueServiceForTest(t, tx, gemini, newFakeBucketService())

  _, err := qs.ExecuteItem(context.Background(), user.ID, item.ID)
  if err == nil {
    t.Fatalf("expected execution to fail")
  }

  var reloaded types.PromptQueueItem
  if err := tx.Where("id = ?", item.ID).First(&reloaded).Error; err != nil {
    t.Fatalf("reload item: %v", err)
  }
  if reloaded.Status != types.QueueStatusFailed {
    t.Fatalf("expected status failed, got %q", reloaded.Status)
  }
  if reloaded.EnhancedPrompt != "a richly detailed harbor at dawn, volumetric light" {
    t.Fatalf("expected enhanced prompt to be persisted, got %q", reloaded.EnhancedPrompt)
  }
  if reloaded.ErrorMessage == "" {
    t.Fatalf("expected error message to be recorded")
  }
  if len(gemini.textCalls) != 1 {
    t.Fatalf("expected 1 enhancement call, got %d", len(gemini.textCalls))
  }
  if gemini.textCalls[0].Prompt != item.Prompt {
    t.Fatalf("enhancement should receive the original prompt, got %q", gemini.textCalls[0].Prompt)
  }
}

func TestExecuteItem_EnhancedPromptDrivesImageGeneration(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "queue-enhance-ok@example.com")
  item := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)
  if err := tx.Model(&types.PromptQueueItem{}).Where("id = ?", item.ID).Update("enhance_prompt", types.EnhanceModeEnhance).Error; err != nil {
    t.Fatalf("set enhance mode: %v", err)
  }

  gemini := &fakeGeminiClient{
    textResponse: "  rewritten prompt  ",
    image:        &GeneratedImage{MimeType: "image/png", Data: []byte("x")},
  }
  qs := newQueueServiceForTest(t, tx, gemini, newFakeBucketService())

  updated, err := qs.ExecuteItem(context.Background(), user.ID, item.ID)
  if err != nil {
    t.Fatalf("execute item: %v", err)
  }
  if updated.EnhancedPrompt != "rewritten prompt" {
    t.Fatalf("expected trimmed enhanced prompt, got %q", updated.EnhancedPrompt)
  }
  if len(gemini.imageCalls) != 1 || gemini.imageCalls[0].Prompt != "rewritten prompt" {
    t.Fatalf("expected image generation to use the enhanced prompt, got %+v", gemini.imageCalls)
  }
}

func TestCreateItem_RequiresPromptAndValidEnhanceMode(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "queue-create@example.com")
  qs := newQueueServiceForTest(t, tx, &fakeGeminiClient{}, newFakeBucketService())

  if _, err := qs.CreateItem(context.Background(), user.ID, &types.PromptQueueItem{Prompt: "   "}); err == nil {
    t.Fatalf("expected error for blank prompt")
  }
  if _, err := qs.CreateItem(context.Background(), user.ID, &types.PromptQueueItem{Prompt: "p", EnhancePrompt: "maybe"}); err == nil {
    t.Fatalf("expected error for invalid enhance mode")
  }

  item, err := qs.CreateItem(context.Background(), user.ID, &types.PromptQueueItem{Prompt: "p"})
  if err != nil {
    t.Fatalf("create item: %v", err)
  }
  if item.Status != types.QueueStatusPending || item.EnhancePrompt != types.EnhanceModeNone {
    t.Fatalf("unexpected defaults: %+v", item)
  }
}
