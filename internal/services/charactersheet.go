package services

import (
  "bytes"
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type CharacterSheetService interface {
  CreateSheet(ctx context.Context, userID uuid.UUID, sheet *types.CharacterSheet) (*types.CharacterSheet, error)
  GetSheet(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID) (*types.CharacterSheet, error)
  ListSheets(ctx context.Context, userID uuid.UUID) ([]*types.CharacterSheet, error)
  UpdateSheet(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID, fields map[string]any) (*types.CharacterSheet, error)
  UploadSheetImage(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID, contentType string, data []byte) (*types.CharacterSheet, error)
  DeleteSheet(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID) error
}

type characterSheetService struct {
  db            *gorm.DB
  log           *logger.Logger
  sheetRepo     repos.CharacterSheetRepo
  bucketService BucketService
}

func NewCharacterSheetService(db *gorm.DB, log *logger.Logger, sheetRepo repos.CharacterSheetRepo, bucketService BucketService) CharacterSheetService {
  return &characterSheetService{
    db:            db,
    log:           log.With("service", "CharacterSheetService"),
    sheetRepo:     sheetRepo,
    bucketService: bucketService,
  }
}

func (cs *characterSheetService) CreateSheet(ctx context.Context, userID uuid.UUID, sheet *types.CharacterSheet) (*types.CharacterSheet, error) {
  if strings.TrimSpace(sheet.Name) == "" {
    return nil, fmt.Errorf("Name is required")
  }
  sheet.ID = uuid.New()
  sheet.UserID = userID
  if _, cErr := cs.sheetRepo.Create(ctx, nil, []*types.CharacterSheet{sheet}); cErr != nil {
    return nil, fmt.Errorf("Failed to create character sheet: %w", cErr)
  }
  return sheet, nil
}

func (cs *characterSheetService) getOwned(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID) (*types.CharacterSheet, error) {
  sheets, gErr := cs.sheetRepo.GetByIDs(ctx, nil, []uuid.UUID{sheetID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get character sheet: %w", gErr)
  }
  if len(sheets) == 0 || sheets[0].UserID != userID {
    return nil, ErrNotFound
  }
  return sheets[0], nil
}

func (cs *characterSheetService) GetSheet(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID) (*types.CharacterSheet, error) {
  return cs.getOwned(ctx, userID, sheetID)
}

func (cs *characterSheetService) ListSheets(ctx context.Context, userID uuid.UUID) ([]*types.CharacterSheet, error) {
  return cs.sheetRepo.ListByUserID(ctx, nil, userID)
}

func (cs *characterSheetService) UpdateSheet(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID, fields map[string]any) (*types.CharacterSheet, error) {
  if _, err := cs.getOwned(ctx, userID, sheetID); err != nil {
    return nil, err
  }
  allowed := filterFields(fields, "name", "description", "metadata")
  if len(allowed) == 0 {
    return nil, fmt.Errorf("No updatable fields provided")
  }
  if uErr := cs.sheetRepo.UpdateFields(ctx, nil, sheetID, allowed); uErr != nil {
    return nil, fmt.Errorf("Failed to update character sheet: %w", uErr)
  }
  return cs.getOwned(ctx, userID, sheetID)
}

func (cs *characterSheetService) UploadSheetImage(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID, contentType string, data []byte) (*types.CharacterSheet, error) {
  sheet, err := cs.getOwned(ctx, userID, sheetID)
  if err != nil {
    return nil, err
  }
  if len(data) == 0 {
    return nil, fmt.Errorf("Image data is required")
  }

  oldKey := sheet.ImageKey
  newKey := fmt.Sprintf("%s/character_sheet/%s/%d", userID.String(), sheetID.String(), time.Now().UnixNano())
  if upErr := cs.bucketService.UploadFile(ctx, newKey, contentType, bytes.NewReader(data)); upErr != nil {
    return nil, fmt.Errorf("Failed to upload character sheet image: %w", upErr)
  }
  if uErr := cs.sheetRepo.UpdateFields(ctx, nil, sheetID, map[string]any{"image_key": newKey}); uErr != nil {
    return nil, fmt.Errorf("Failed to update character sheet image key: %w", uErr)
  }
  if oldKey != "" && oldKey != newKey {
    if delErr := cs.bucketService.DeleteFile(ctx, oldKey); delErr != nil {
      cs.log.Warn("Failed to delete old sheet image (ignored)", "key", oldKey, "error", delErr)
    }
  }
  return cs.getOwned(ctx, userID, sheetID)
}

func (cs *characterSheetService) DeleteSheet(ctx context.Context, userID uuid.UUID, sheetID uuid.UUID) error {
  sheet, err := cs.getOwned(ctx, userID, sheetID)
  if err != nil {
    return err
  }
  if dErr := cs.sheetRepo.Delete(ctx, nil, sheetID); dErr != nil {
    return fmt.Errorf("Failed to delete character sheet: %w", dErr)
  }
  if sheet.ImageKey != "" {
    if delErr := cs.bucketService.DeleteFile(ctx, sheet.ImageKey); delErr != nil {
      cs.log.Warn("Failed to delete sheet image object (ignored)", "key", sheet.ImageKey, "error", delErr)
    }
  }
  return nil
}
