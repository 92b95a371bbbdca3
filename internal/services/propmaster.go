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

type PropMasterService interface {
  CreateProp(ctx context.Context, userID uuid.UUID, prop *types.PropMaster) (*types.PropMaster, error)
  GetProp(ctx context.Context, userID uuid.UUID, propID uuid.UUID) (*types.PropMaster, error)
  ListProps(ctx context.Context, userID uuid.UUID) ([]*types.PropMaster, error)
  UpdateProp(ctx context.Context, userID uuid.UUID, propID uuid.UUID, fields map[string]any) (*types.PropMaster, error)
  UploadPropImage(ctx context.Context, userID uuid.UUID, propID uuid.UUID, contentType string, data []byte) (*types.PropMaster, error)
  DeleteProp(ctx context.Context, userID uuid.UUID, propID uuid.UUID) error
}

type propMasterService struct {
  db            *gorm.DB
  log           *logger.Logger
  propRepo      repos.PropMasterRepo
  bucketService BucketService
}

func NewPropMasterService(db *gorm.DB, log *logger.Logger, propRepo repos.PropMasterRepo, bucketService BucketService) PropMasterService {
  return &propMasterService{
    db:            db,
    log:           log.With("service", "PropMasterService"),
    propRepo:      propRepo,
    bucketService: bucketService,
  }
}

func (pm *propMasterService) CreateProp(ctx context.Context, userID uuid.UUID, prop *types.PropMaster) (*types.PropMaster, error) {
  if strings.TrimSpace(prop.Title) == "" {
    return nil, fmt.Errorf("Title is required")
  }
  prop.ID = uuid.New()
  prop.UserID = userID
  if _, cErr := pm.propRepo.Create(ctx, nil, []*types.PropMaster{prop}); cErr != nil {
    return nil, fmt.Errorf("Failed to create prop master: %w", cErr)
  }
  return prop, nil
}

func (pm *propMasterService) getOwned(ctx context.Context, userID uuid.UUID, propID uuid.UUID) (*types.PropMaster, error) {
  props, gErr := pm.propRepo.GetByIDs(ctx, nil, []uuid.UUID{propID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get prop master: %w", gErr)
  }
  if len(props) == 0 || props[0].UserID != userID {
    return nil, ErrNotFound
  }
  return props[0], nil
}

func (pm *propMasterService) GetProp(ctx context.Context, userID uuid.UUID, propID uuid.UUID) (*types.PropMaster, error) {
  return pm.getOwned(ctx, userID, propID)
}

func (pm *propMasterService) ListProps(ctx context.Context, userID uuid.UUID) ([]*types.PropMaster, error) {
  return pm.propRepo.ListByUserID(ctx, nil, userID)
}

func (pm *propMasterService) UpdateProp(ctx context.Context, userID uuid.UUID, propID uuid.UUID, fields map[string]any) (*types.PropMaster, error) {
  if _, err := pm.getOwned(ctx, userID, propID); err != nil {
    return nil, err
  }
  allowed := filterFields(fields, "title", "description", "metadata")
  if len(allowed) == 0 {
    return nil, fmt.Errorf("No updatable fields provided")
  }
  if uErr := pm.propRepo.UpdateFields(ctx, nil, propID, allowed); uErr != nil {
    return nil, fmt.Errorf("Failed to update prop master: %w", uErr)
  }
  return pm.getOwned(ctx, userID, propID)
}

func (pm *propMasterService) UploadPropImage(ctx context.Context, userID uuid.UUID, propID uuid.UUID, contentType string, data []byte) (*types.PropMaster, error) {
  prop, err := pm.getOwned(ctx, userID, propID)
  if err != nil {
    return nil, err
  }
  if len(data) == 0 {
    return nil, fmt.Errorf("Image data is required")
  }

  oldKey := prop.ImageKey
  newKey := fmt.Sprintf("%s/prop_master/%s/%d", userID.String(), propID.String(), time.Now().UnixNano())
  if upErr := pm.bucketService.UploadFile(ctx, newKey, contentType, bytes.NewReader(data)); upErr != nil {
    return nil, fmt.Errorf("Failed to upload prop image: %w", upErr)
  }
  if uErr := pm.propRepo.UpdateFields(ctx, nil, propID, map[string]any{"image_key": newKey}); uErr != nil {
    return nil, fmt.Errorf("Failed to update prop image key: %w", uErr)
  }
  if oldKey != "" && oldKey != newKey {
    if delErr := pm.bucketService.DeleteFile(ctx, oldKey); delErr != nil {
      pm.log.Warn("Failed to delete old prop image (ignored)", "key", oldKey, "error", delErr)
    }
  }
  return pm.getOwned(ctx, userID, propID)
}

func (pm *propMasterService) DeleteProp(ctx context.Context, userID uuid.UUID, propID uuid.UUID) error {
  prop, err := pm.getOwned(ctx, userID, propID)
  if err != nil {
    return err
  }
  if dErr := pm.propRepo.Delete(ctx, nil, propID); dErr != nil {
    return fmt.Errorf("Failed to delete prop master: %w", dErr)
  }
  if prop.ImageKey != "" {
    if delErr := pm.bucketService.DeleteFile(ctx, prop.ImageKey); delErr != nil {
      pm.log.Warn("Failed to delete prop image object (ignored)", "key", prop.ImageKey, "error", delErr)
    }
  }
  return nil
}
