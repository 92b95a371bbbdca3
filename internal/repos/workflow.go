package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type WorkflowRepo interface {
  Create(ctx context.Context, tx *gorm.DB, workflows []*types.Workflow) ([]*types.Workflow, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, workflowIDs []uuid.UUID) ([]*types.Workflow, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Workflow, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, workflowID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, workflowID uuid.UUID) error
}

type workflowRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewWorkflowRepo(db *gorm.DB, baseLog *logger.Logger) WorkflowRepo {
  repoLog := baseLog.With("repo", "WorkflowRepo")
  return &workflowRepo{db: db, log: repoLog}
}

func (wr *workflowRepo) Create(ctx context.Context, tx *gorm.DB, workflows []*types.Workflow) ([]*types.Workflow, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  if len(workflows) == 0 {
    return []*types.Workflow{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&workflows).Error; err != nil {
    return nil, err
  }
  return workflows, nil
}

func (wr *workflowRepo) GetByIDs(ctx context.Context, tx *gorm.DB, workflowIDs []uuid.UUID) ([]*types.Workflow, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  var results []*types.Workflow
  if len(workflowIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", workflowIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (wr *workflowRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Workflow, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  var results []*types.Workflow
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (wr *workflowRepo) UpdateFields(ctx context.Context, tx *gorm.DB, workflowID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Workflow{}).
    Where("id = ?", workflowID).
    Updates(fields).Error
}

func (wr *workflowRepo) Delete(ctx context.Context, tx *gorm.DB, workflowID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", workflowID).
    Delete(&types.Workflow{}).Error
}
