package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type OutputRepo interface {
  Create(ctx context.Context, tx *gorm.DB, outputs []*types.Output) ([]*types.Output, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, outputIDs []uuid.UUID) ([]*types.Output, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Output, error)
  Delete(ctx context.Context, tx *gorm.DB, outputID uuid.UUID) error
}

type outputRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewOutputRepo(db *gorm.DB, baseLog *logger.Logger) OutputRepo {
  repoLog := baseLog.With("repo", "OutputRepo")
  return &outputRepo{db: db, log: repoLog}
}

func (or *outputRepo) Create(ctx context.Context, tx *gorm.DB, outputs []*types.Output) ([]*types.Output, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  if len(outputs) == 0 {
    return []*types.Output{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&outputs).Error; err != nil {
    return nil, err
  }
  return outputs, nil
}

func (or *outputRepo) GetByIDs(ctx context.Context, tx *gorm.DB, outputIDs []uuid.UUID) ([]*types.Output, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  var results []*types.Output
  if len(outputIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", outputIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *outputRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Output, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  var results []*types.Output
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *outputRepo) Delete(ctx context.Context, tx *gorm.DB, outputID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", outputID).
    Delete(&types.Output{}).Error
}
