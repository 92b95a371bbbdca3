package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

const enhanceSystemInstruction = "You are an expert prompt engineer for image generation. " +
  "Rewrite the user's prompt into a single richly detailed image generation prompt. " +
  "Preserve the subject and intent, add concrete visual detail (lighting, composition, style), " +
  "and return only the rewritten prompt with no commentary."

// Reference images passed to the enhancement call are capped so oversized
// queues cannot blow up the text-generation request.
const maxEnhanceReferenceImages = 4

// Delay between items in bulk execution, a fixed sleep-based throttle for
// provider rate limits.
const bulkExecuteDelay = 300 * time.Millisecond

// BatchItemError records one failed item of a bulk run; the rest of the batch
// continues regardless.
type BatchItemError struct {
  ItemID uuid.UUID `json:"item_id"`
  Error  string    `json:"error"`
}

type PromptQueueService interface {
  CreateItem(ctx context.Context, userID uuid.UUID, item *types.PromptQueueItem) (*types.PromptQueueItem, error)
  GetItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*types.PromptQueueItem, error)
  ListItems(ctx context.Context, userID uuid.UUID, status string) ([]*types.PromptQueueItem, error)
  CancelItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error
  DeleteItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error
  ExecuteItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*types.PromptQueueItem, error)
  ExecuteBatch(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]*types.PromptQueueItem, []BatchItemError)
}

type promptQueueService struct {
  db                 *gorm.DB
  log                *logger.Logger
  queueRepo          repos.PromptQueueRepo
  outputRepo         repos.OutputRepo
  characterSheetRepo repos.CharacterSheetRepo
  geminiClient       GeminiClient
  bucketService      BucketService
}

func NewPromptQueueService(
  db *gorm.DB,
  log *logger.Logger,
  queueRepo repos.PromptQueueRepo,
  outputRepo repos.OutputRepo,
  characterSheetRepo repos.CharacterSheetRepo,
  geminiClient GeminiClient,
  bucketService BucketService,
) PromptQueueService {
  return &promptQueueService{
    db:                 db,
    log:                log.With("service", "PromptQueueService"),
    queueRepo:          queueRepo,
    outputRepo:         outputRepo,
    characterSheetRepo: characterSheetRepo,
    geminiClient:       geminiClient,
    bucketService:      bucketService,
  }
}

func (qs *promptQueueService) CreateItem(ctx context.Context, userID uuid.UUID, item *types.PromptQueueItem) (*types.PromptQueueItem, error) {
  if strings.TrimSpace(item.Prompt) == "" {
    return nil, fmt.Errorf("Prompt is required")
  }
  if item.EnhancePrompt == "" {
    item.EnhancePrompt = types.EnhanceModeNone
  }
  if item.EnhancePrompt != types.EnhanceModeNone && item.EnhancePrompt != types.EnhanceModeEnhance {
    return nil, fmt.Errorf("Invalid enhance_prompt value: %s", item.EnhancePrompt)
  }

  item.ID = uuid.New()
  item.UserID = userID
  item.Status = types.QueueStatusPending
  if len(item.Images) == 0 {
    item.Images = datatypes.JSON([]byte("[]"))
  }

  if _, cErr := qs.queueRepo.Create(ctx, nil, []*types.PromptQueueItem{item}); cErr != nil {
    return nil, fmt.Errorf("Failed to create queue item: %w", cErr)
  }
  return item, nil
}

func (qs *promptQueueService) getOwned(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*types.PromptQueueItem, error) {
  items, gErr := qs.queueRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get queue item: %w", gErr)
  }
  if len(items) == 0 || items[0].UserID != userID {
    return nil, ErrNotFound
  }
  return items[0], nil
}

func (qs *promptQueueService) GetItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*types.PromptQueueItem, error) {
  return qs.getOwned(ctx, userID, itemID)
}

func (qs *promptQueueService) ListItems(ctx context.Context, userID uuid.UUID, status string) ([]*types.PromptQueueItem, error) {
  return qs.queueRepo.ListByUserID(ctx, nil, userID, status)
}

func (qs *promptQueueService) CancelItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
  if _, err := qs.getOwned(ctx, userID, itemID); err != nil {
    return err
  }
  cancelled, cErr := qs.queueRepo.CancelPending(ctx, nil, userID, itemID)
  if cErr != nil {
    return fmt.Errorf("Failed to cancel queue item: %w", cErr)
  }
  if !cancelled {
    return ErrQueueItemNotPending
  }
  return nil
}

func (qs *promptQueueService) DeleteItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
  if _, err := qs.getOwned(ctx, userID, itemID); err != nil {
    return err
  }
  if dErr := qs.queueRepo.Delete(ctx, nil, itemID); dErr != nil {
    return fmt.Errorf("Failed to delete queue item: %w", dErr)
  }
  return nil
}

// ExecuteItem runs one pending item synchronously inside the calling request.
// The pending -> processing transition is a conditional UPDATE, so a second
// caller racing on the same item loses the claim and gets
// ErrQueueItemNotPending instead of double-executing.
//
// After the claim, any failure flips the item to failed with the error message
// stored verbatim, and the error is returned to the caller. Failed items are
// not retried; resubmission is up to the caller.
func (qs *promptQueueService) ExecuteItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*types.PromptQueueItem, error) {
  item, gErr := qs.getOwned(ctx, userID, itemID)
  if gErr != nil {
    return nil, gErr
  }

  claimed, clErr := qs.queueRepo.ClaimProcessing(ctx, nil, userID, itemID)
  if clErr != nil {
    return nil, fmt.Errorf("Failed to claim queue item: %w", clErr)
  }
  if !claimed {
    return nil, ErrQueueItemNotPending
  }

  if runErr := qs.runItem(ctx, item); runErr != nil {
    if failErr := qs.queueRepo.UpdateFields(ctx, nil, itemID, map[string]any{
      "status":        types.QueueStatusFailed,
      "error_message": runErr.Error(),
      "updated_at":    time.Now(),
    }); failErr != nil {
      qs.log.Error("Failed to mark queue item failed", "item_id", itemID, "error", failErr)
    }
    return nil, runErr
  }

  return qs.getOwned(ctx, userID, itemID)
}

func (qs *promptQueueService) runItem(ctx context.Context, item *types.PromptQueueItem) error {
  refImages := qs.resolveReferenceImages(ctx, item)

  prompt := item.Prompt
  if item.EnhancePrompt == types.EnhanceModeEnhance {
    enhanceRefs := refImages
    if len(enhanceRefs) > maxEnhanceReferenceImages {
      enhanceRefs = enhanceRefs[:maxEnhanceReferenceImages]
    }
    enhanced, enErr := qs.geminiClient.GenerateText(ctx, enhanceSystemInstruction, item.Prompt, enhanceRefs)
    if enErr != nil {
      return fmt.Errorf("Failed to enhance prompt: %w", enErr)
    }
    enhanced = strings.TrimSpace(enhanced)

    // Persist the enhancement on its own before the image call so a later
    // failure cannot lose it.
    if upErr := qs.queueRepo.UpdateFields(ctx, nil, item.ID, map[string]any{
      "enhanced_prompt": enhanced,
      "updated_at":      time.Now(),
    }); upErr != nil {
      return fmt.Errorf("Failed to persist enhanced prompt: %w", upErr)
    }
    item.EnhancedPrompt = enhanced
    prompt = enhanced
  }

  generated, genErr := qs.geminiClient.GenerateImage(ctx, GeminiImageRequest{
    Model:           item.Model,
    Prompt:          prompt,
    NegativePrompt:  item.NegativePrompt,
    AspectRatio:     item.AspectRatio,
    ReferenceImages: refImages,
  })
  if genErr != nil {
    return fmt.Errorf("Failed to generate image: %w", genErr)
  }

  outputID := uuid.New()
  storageKey := fmt.Sprintf("%s/outputs/%s.png", item.UserID.String(), outputID.String())
  if upErr := qs.bucketService.UploadFile(ctx, storageKey, generated.MimeType, bytes.NewReader(generated.Data)); upErr != nil {
    return fmt.Errorf("Failed to upload generated image: %w", upErr)
  }

  outputMetadata, mErr := json.Marshal(map[string]any{
    "queue_id": item.ID.String(),
    "model":    item.Model,
    "enhanced": item.EnhancePrompt == types.EnhanceModeEnhance,
  })
  if mErr != nil {
    return fmt.Errorf("Failed to marshal output metadata: %w", mErr)
  }

  output := &types.Output{
    ID:         outputID,
    UserID:     item.UserID,
    StorageKey: storageKey,
    URL:        qs.bucketService.GetPublicURL(storageKey),
    Metadata:   datatypes.JSON(outputMetadata),
  }
  if _, coErr := qs.outputRepo.Create(ctx, nil, []*types.Output{output}); coErr != nil {
    return fmt.Errorf("Failed to create output row: %w", coErr)
  }

  completedAt := time.Now()
  if upErr := qs.queueRepo.UpdateFields(ctx, nil, item.ID, map[string]any{
    "status":       types.QueueStatusCompleted,
    "output_id":    outputID,
    "completed_at": completedAt,
    "updated_at":   completedAt,
  }); upErr != nil {
    return fmt.Errorf("Failed to mark queue item completed: %w", upErr)
  }
  return nil
}

// resolveReferenceImages fetches the binary content behind each image ref.
// A ref that cannot be resolved is logged and skipped; execution continues
// with fewer reference images.
func (qs *promptQueueService) resolveReferenceImages(ctx context.Context, item *types.PromptQueueItem) []ReferenceImage {
  var refs []types.QueueImageRef
  if len(item.Images) > 0 {
    if err := json.Unmarshal(item.Images, &refs); err != nil {
      qs.log.Warn("Failed to unmarshal queue image refs, continuing without", "item_id", item.ID, "error", err)
      return nil
    }
  }

  var resolved []ReferenceImage
  for _, ref := range refs {
    key, kErr := qs.storageKeyForRef(ctx, item.UserID, ref)
    if kErr != nil {
      qs.log.Warn("Failed to resolve reference image, skipping", "item_id", item.ID, "image_type", ref.ImageType, "reference_id", ref.ReferenceID, "error", kErr)
      continue
    }
    reader, contentType, dErr := qs.bucketService.DownloadFile(ctx, key)
    if dErr != nil {
      qs.log.Warn("Failed to download reference image, skipping", "item_id", item.ID, "key", key, "error", dErr)
      continue
    }
    data, rErr := io.ReadAll(reader)
    _ = reader.Close()
    if rErr != nil {
      qs.log.Warn("Failed to read reference image, skipping", "item_id", item.ID, "key", key, "error", rErr)
      continue
    }
    if contentType == "" {
      contentType = "image/png"
    }
    resolved = append(resolved, ReferenceImage{MimeType: contentType, Data: data})
  }
  return resolved
}

func (qs *promptQueueService) storageKeyForRef(ctx context.Context, userID uuid.UUID, ref types.QueueImageRef) (string, error) {
  switch ref.ImageType {
  case "character_sheet":
    sheets, err := qs.characterSheetRepo.GetByIDs(ctx, nil, []uuid.UUID{ref.ReferenceID})
    if err != nil {
      return "", err
    }
    if len(sheets) == 0 || sheets[0].UserID != userID {
      return "", ErrNotFound
    }
    if sheets[0].ImageKey == "" {
      return "", fmt.Errorf("character sheet has no image")
    }
    return sheets[0].ImageKey, nil
  case "output":
    outputs, err := qs.outputRepo.GetByIDs(ctx, nil, []uuid.UUID{ref.ReferenceID})
    if err != nil {
      return "", err
    }
    if len(outputs) == 0 || outputs[0].UserID != userID {
      return "", ErrNotFound
    }
    return outputs[0].StorageKey, nil
  default:
    return "", fmt.Errorf("unknown image reference type: %s", ref.ImageType)
  }
}

// ExecuteBatch runs items sequentially with a fixed delay between them. Each
// item's outcome is recorded independently; one failure never aborts the rest.
func (qs *promptQueueService) ExecuteBatch(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]*types.PromptQueueItem, []BatchItemError) {
  var completed []*types.PromptQueueItem
  var batchErrors []BatchItemError

  for i, itemID := range itemIDs {
    if i > 0 {
      select {
      case <-ctx.Done():
        batchErrors = append(batchErrors, BatchItemError{ItemID: itemID, Error: ctx.Err().Error()})
        return completed, batchErrors
      case <-time.After(bulkExecuteDelay):
      }
    }
    item, err := qs.ExecuteItem(ctx, userID, itemID)
    if err != nil {
      batchErrors = append(batchErrors, BatchItemError{ItemID: itemID, Error: err.Error()})
      continue
    }
    completed = append(completed, item)
  }
  return completed, batchErrors
}
