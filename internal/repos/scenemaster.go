package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type SceneMasterRepo interface {
  Create(ctx context.Context, tx *gorm.DB, scenes []*types.SceneMaster) ([]*types.SceneMaster, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, sceneIDs []uuid.UUID) ([]*types.SceneMaster, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SceneMaster, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, sceneID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, sceneID uuid.UUID) error
}

type sceneMasterRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSceneMasterRepo(db *gorm.DB, baseLog *logger.Logger) SceneMasterRepo {
  repoLog := baseLog.With("repo", "SceneMasterRepo")
  return &sceneMasterRepo{db: db, log: repoLog}
}

func (sr *sceneMasterRepo) Create(ctx context.Context, tx *gorm.DB, scenes []*types.SceneMaster) ([]*types.SceneMaster, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  if len(scenes) == 0 {
    return []*types.SceneMaster{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&scenes).Error; err != nil {
    return nil, err
  }
  return scenes, nil
}

func (sr *sceneMasterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sceneIDs []uuid.UUID) ([]*types.SceneMaster, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var results []*types.SceneMaster
  if len(sceneIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", sceneIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *sceneMasterRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SceneMaster, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var results []*types.SceneMaster
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *sceneMasterRepo) UpdateFields(ctx context.Context, tx *gorm.DB, sceneID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.SceneMaster{}).
    Where("id = ?", sceneID).
    Updates(fields).Error
}

func (sr *sceneMasterRepo) Delete(ctx context.Context, tx *gorm.DB, sceneID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", sceneID).
    Delete(&types.SceneMaster{}).Error
}
