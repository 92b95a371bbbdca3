package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type StepRepo interface {
  Create(ctx context.Context, tx *gorm.DB, steps []*types.Step) ([]*types.Step, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, stepIDs []uuid.UUID) ([]*types.Step, error)
  ListByBoardID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.Step, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) error
}

type stepRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStepRepo(db *gorm.DB, baseLog *logger.Logger) StepRepo {
  repoLog := baseLog.With("repo", "StepRepo")
  return &stepRepo{db: db, log: repoLog}
}

func (sr *stepRepo) Create(ctx context.Context, tx *gorm.DB, steps []*types.Step) ([]*types.Step, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  if len(steps) == 0 {
    return []*types.Step{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&steps).Error; err != nil {
    return nil, err
  }
  return steps, nil
}

func (sr *stepRepo) GetByIDs(ctx context.Context, tx *gorm.DB, stepIDs []uuid.UUID) ([]*types.Step, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var results []*types.Step
  if len(stepIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", stepIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *stepRepo) ListByBoardID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.Step, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var results []*types.Step
  if err := transaction.WithContext(ctx).
    Where("board_id = ?", boardID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *stepRepo) UpdateFields(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Step{}).
    Where("id = ?", stepID).
    Updates(fields).Error
}

func (sr *stepRepo) Delete(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", stepID).
    Delete(&types.Step{}).Error
}
