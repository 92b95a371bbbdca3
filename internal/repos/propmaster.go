package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type PropMasterRepo interface {
  Create(ctx context.Context, tx *gorm.DB, props []*types.PropMaster) ([]*types.PropMaster, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, propIDs []uuid.UUID) ([]*types.PropMaster, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PropMaster, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, propID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, propID uuid.UUID) error
}

type propMasterRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPropMasterRepo(db *gorm.DB, baseLog *logger.Logger) PropMasterRepo {
  repoLog := baseLog.With("repo", "PropMasterRepo")
  return &propMasterRepo{db: db, log: repoLog}
}

func (pr *propMasterRepo) Create(ctx context.Context, tx *gorm.DB, props []*types.PropMaster) ([]*types.PropMaster, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(props) == 0 {
    return []*types.PropMaster{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&props).Error; err != nil {
    return nil, err
  }
  return props, nil
}

func (pr *propMasterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, propIDs []uuid.UUID) ([]*types.PropMaster, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.PropMaster
  if len(propIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", propIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *propMasterRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PropMaster, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.PropMaster
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *propMasterRepo) UpdateFields(ctx context.Context, tx *gorm.DB, propID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.PropMaster{}).
    Where("id = ?", propID).
    Updates(fields).Error
}

func (pr *propMasterRepo) Delete(ctx context.Context, tx *gorm.DB, propID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", propID).
    Delete(&types.PropMaster{}).Error
}
