package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type StudioRepo interface {
  Create(ctx context.Context, tx *gorm.DB, studios []*types.Studio) ([]*types.Studio, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, studioIDs []uuid.UUID) ([]*types.Studio, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Studio, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, studioID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, studioID uuid.UUID) error
}

type studioRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStudioRepo(db *gorm.DB, baseLog *logger.Logger) StudioRepo {
  repoLog := baseLog.With("repo", "StudioRepo")
  return &studioRepo{db: db, log: repoLog}
}

func (sr *studioRepo) Create(ctx context.Context, tx *gorm.DB, studios []*types.Studio) ([]*types.Studio, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  if len(studios) == 0 {
    return []*types.Studio{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&studios).Error; err != nil {
    return nil, err
  }
  return studios, nil
}

func (sr *studioRepo) GetByIDs(ctx context.Context, tx *gorm.DB, studioIDs []uuid.UUID) ([]*types.Studio, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var results []*types.Studio
  if len(studioIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", studioIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *studioRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Studio, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var results []*types.Studio
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *studioRepo) UpdateFields(ctx context.Context, tx *gorm.DB, studioID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Studio{}).
    Where("id = ?", studioID).
    Updates(fields).Error
}

func (sr *studioRepo) Delete(ctx context.Context, tx *gorm.DB, studioID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", studioID).
    Delete(&types.Studio{}).Error
}
