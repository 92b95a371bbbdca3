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

type SceneMasterService interface {
  CreateScene(ctx context.Context, userID uuid.UUID, scene *types.SceneMaster) (*types.SceneMaster, error)
  GetScene(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID) (*types.SceneMaster, error)
  ListScenes(ctx context.Context, userID uuid.UUID) ([]*types.SceneMaster, error)
  UpdateScene(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID, fields map[string]any) (*types.SceneMaster, error)
  UploadSceneImage(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID, contentType string, data []byte) (*types.SceneMaster, error)
  DeleteScene(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID) error
}

type sceneMasterService struct {
  db            *gorm.DB
  log           *logger.Logger
  sceneRepo     repos.SceneMasterRepo
  bucketService BucketService
}

func NewSceneMasterService(db *gorm.DB, log *logger.Logger, sceneRepo repos.SceneMasterRepo, bucketService BucketService) SceneMasterService {
  return &sceneMasterService{
    db:            db,
    log:           log.With("service", "SceneMasterService"),
    sceneRepo:     sceneRepo,
    bucketService: bucketService,
  }
}

func (sm *sceneMasterService) CreateScene(ctx context.Context, userID uuid.UUID, scene *types.SceneMaster) (*types.SceneMaster, error) {
  if strings.TrimSpace(scene.Title) == "" {
    return nil, fmt.Errorf("Title is required")
  }
  scene.ID = uuid.New()
  scene.UserID = userID
  if _, cErr := sm.sceneRepo.Create(ctx, nil, []*types.SceneMaster{scene}); cErr != nil {
    return nil, fmt.Errorf("Failed to create scene master: %w", cErr)
  }
  return scene, nil
}

func (sm *sceneMasterService) getOwned(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID) (*types.SceneMaster, error) {
  scenes, gErr := sm.sceneRepo.GetByIDs(ctx, nil, []uuid.UUID{sceneID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get scene master: %w", gErr)
  }
  if len(scenes) == 0 || scenes[0].UserID != userID {
    return nil, ErrNotFound
  }
  return scenes[0], nil
}

func (sm *sceneMasterService) GetScene(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID) (*types.SceneMaster, error) {
  return sm.getOwned(ctx, userID, sceneID)
}

func (sm *sceneMasterService) ListScenes(ctx context.Context, userID uuid.UUID) ([]*types.SceneMaster, error) {
  return sm.sceneRepo.ListByUserID(ctx, nil, userID)
}

func (sm *sceneMasterService) UpdateScene(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID, fields map[string]any) (*types.SceneMaster, error) {
  if _, err := sm.getOwned(ctx, userID, sceneID); err != nil {
    return nil, err
  }
  allowed := filterFields(fields, "title", "description", "metadata")
  if len(allowed) == 0 {
    return nil, fmt.Errorf("No updatable fields provided")
  }
  if uErr := sm.sceneRepo.UpdateFields(ctx, nil, sceneID, allowed); uErr != nil {
    return nil, fmt.Errorf("Failed to update scene master: %w", uErr)
  }
  return sm.getOwned(ctx, userID, sceneID)
}

func (sm *sceneMasterService) UploadSceneImage(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID, contentType string, data []byte) (*types.SceneMaster, error) {
  scene, err := sm.getOwned(ctx, userID, sceneID)
  if err != nil {
    return nil, err
  }
  if len(data) == 0 {
    return nil, fmt.Errorf("Image data is required")
  }

  oldKey := scene.ImageKey
  newKey := fmt.Sprintf("%s/scene_master/%s/%d", userID.String(), sceneID.String(), time.Now().UnixNano())
  if upErr := sm.bucketService.UploadFile(ctx, newKey, contentType, bytes.NewReader(data)); upErr != nil {
    return nil, fmt.Errorf("Failed to upload scene image: %w", upErr)
  }
  if uErr := sm.sceneRepo.UpdateFields(ctx, nil, sceneID, map[string]any{"image_key": newKey}); uErr != nil {
    return nil, fmt.Errorf("Failed to update scene image key: %w", uErr)
  }
  if oldKey != "" && oldKey != newKey {
    if delErr := sm.bucketService.DeleteFile(ctx, oldKey); delErr != nil {
      sm.log.Warn("Failed to delete old scene image (ignored)", "key", oldKey, "error", delErr)
    }
  }
  return sm.getOwned(ctx, userID, sceneID)
}

func (sm *sceneMasterService) DeleteScene(ctx context.Context, userID uuid.UUID, sceneID uuid.UUID) error {
  scene, err := sm.getOwned(ctx, userID, sceneID)
  if err != nil {
    return err
  }
  if dErr := sm.sceneRepo.Delete(ctx, nil, sceneID); dErr != nil {
    return fmt.Errorf("Failed to delete scene master: %w", dErr)
  }
  if scene.ImageKey != "" {
    if delErr := sm.bucketService.DeleteFile(ctx, scene.ImageKey); delErr != nil {
      sm.log.Warn("Failed to delete scene image object (ignored)", "key", scene.ImageKey, "error", delErr)
    }
  }
  return nil
}
