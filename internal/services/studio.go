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

type StudioService interface {
  CreateStudio(ctx context.Context, userID uuid.UUID, title, description string) (*types.Studio, error)
  GetStudio(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) (*types.Studio, error)
  ListStudios(ctx context.Context, userID uuid.UUID) ([]*types.Studio, error)
  UpdateStudio(ctx context.Context, userID uuid.UUID, studioID uuid.UUID, fields map[string]any) (*types.Studio, error)
  DeleteStudio(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) error
}

type studioService struct {
  db            *gorm.DB
  log           *logger.Logger
  studioRepo    repos.StudioRepo
  avatarService AvatarService
  bucketService BucketService
}

func NewStudioService(db *gorm.DB, log *logger.Logger, studioRepo repos.StudioRepo, avatarService AvatarService, bucketService BucketService) StudioService {
  return &studioService{
    db:            db,
    log:           log.With("service", "StudioService"),
    studioRepo:    studioRepo,
    avatarService: avatarService,
    bucketService: bucketService,
  }
}

func (ss *studioService) CreateStudio(ctx context.Context, userID uuid.UUID, title, description string) (*types.Studio, error) {
  title = strings.TrimSpace(title)
  if title == "" {
    return nil, fmt.Errorf("Title is required")
  }

  studio := &types.Studio{
    ID:          uuid.New(),
    UserID:      userID,
    Title:       title,
    Description: strings.TrimSpace(description),
  }

  if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    coverBuf, cvErr := ss.avatarService.GenerateStudioCover(ctx, studio)
    if cvErr != nil {
      ss.log.Warn("Failed to generate studio cover (continuing without)", "error", cvErr)
    } else {
      key := fmt.Sprintf("%s/studio/%s/cover/%d.png", userID.String(), studio.ID.String(), time.Now().UnixNano())
      if upErr := ss.bucketService.UploadFile(ctx, key, "image/png", bytes.NewReader(coverBuf.Bytes())); upErr != nil {
        ss.log.Warn("Failed to upload studio cover (continuing without)", "error", upErr)
      } else {
        studio.CoverKey = key
      }
    }
    if _, cErr := ss.studioRepo.Create(ctx, tx, []*types.Studio{studio}); cErr != nil {
      return fmt.Errorf("Failed to create studio: %w", cErr)
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return studio, nil
}

// getOwned loads a studio and enforces row ownership; foreign-owned rows look
// identical to missing ones from the caller's side.
func (ss *studioService) getOwned(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) (*types.Studio, error) {
  studios, gErr := ss.studioRepo.GetByIDs(ctx, nil, []uuid.UUID{studioID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get studio: %w", gErr)
  }
  if len(studios) == 0 || studios[0].UserID != userID {
    return nil, ErrNotFound
  }
  return studios[0], nil
}

func (ss *studioService) GetStudio(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) (*types.Studio, error) {
  return ss.getOwned(ctx, userID, studioID)
}

func (ss *studioService) ListStudios(ctx context.Context, userID uuid.UUID) ([]*types.Studio, error) {
  return ss.studioRepo.ListByUserID(ctx, nil, userID)
}

func (ss *studioService) UpdateStudio(ctx context.Context, userID uuid.UUID, studioID uuid.UUID, fields map[string]any) (*types.Studio, error) {
  if _, err := ss.getOwned(ctx, userID, studioID); err != nil {
    return nil, err
  }
  allowed := filterFields(fields, "title", "description", "metadata")
  if len(allowed) == 0 {
    return nil, fmt.Errorf("No updatable fields provided")
  }
  if uErr := ss.studioRepo.UpdateFields(ctx, nil, studioID, allowed); uErr != nil {
    return nil, fmt.Errorf("Failed to update studio: %w", uErr)
  }
  return ss.getOwned(ctx, userID, studioID)
}

func (ss *studioService) DeleteStudio(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) error {
  studio, err := ss.getOwned(ctx, userID, studioID)
  if err != nil {
    return err
  }
  if dErr := ss.studioRepo.Delete(ctx, nil, studioID); dErr != nil {
    return fmt.Errorf("Failed to delete studio: %w", dErr)
  }
  if studio.CoverKey != "" {
    if delErr := ss.bucketService.DeleteFile(ctx, studio.CoverKey); delErr != nil {
      ss.log.Warn("Failed to delete studio cover object (ignored)", "key", studio.CoverKey, "error", delErr)
    }
  }
  return nil
}

func filterFields(fields map[string]any, allowed ...string) map[string]any {
  out := make(map[string]any, len(fields))
  for _, key := range allowed {
    if v, ok := fields[key]; ok {
      out[key] = v
    }
  }
  return out
}
