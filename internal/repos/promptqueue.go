package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type PromptQueueRepo interface {
  Create(ctx context.Context, tx *gorm.DB, items []*types.PromptQueueItem) ([]*types.PromptQueueItem, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.PromptQueueItem, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.PromptQueueItem, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, fields map[string]any) error
  // ClaimProcessing flips a pending item to processing in a single conditional
  // UPDATE. Returns false when the item was not pending (already claimed,
  // finished or cancelled) so check-then-set races cannot double-execute.
  ClaimProcessing(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID) (bool, error)
  // CancelPending flips a pending item to cancelled with the same guard.
  CancelPending(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID) (bool, error)
  Delete(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
}

type promptQueueRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPromptQueueRepo(db *gorm.DB, baseLog *logger.Logger) PromptQueueRepo {
  repoLog := baseLog.With("repo", "PromptQueueRepo")
  return &promptQueueRepo{db: db, log: repoLog}
}

func (qr *promptQueueRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.PromptQueueItem) ([]*types.PromptQueueItem, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }
  if len(items) == 0 {
    return []*types.PromptQueueItem{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
    return nil, err
  }
  return items, nil
}

func (qr *promptQueueRepo) GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.PromptQueueItem, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }
  var results []*types.PromptQueueItem
  if len(itemIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", itemIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (qr *promptQueueRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.PromptQueueItem, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }
  query := transaction.WithContext(ctx).Where("user_id = ?", userID)
  if status != "" {
    query = query.Where("status = ?", status)
  }
  var results []*types.PromptQueueItem
  if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (qr *promptQueueRepo) UpdateFields(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.PromptQueueItem{}).
    Where("id = ?", itemID).
    Updates(fields).Error
}

func (qr *promptQueueRepo) ClaimProcessing(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID) (bool, error) {
  return qr.transition(ctx, tx, userID, itemID, types.QueueStatusPending, types.QueueStatusProcessing)
}

func (qr *promptQueueRepo) CancelPending(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID) (bool, error) {
  return qr.transition(ctx, tx, userID, itemID, types.QueueStatusPending, types.QueueStatusCancelled)
}

func (qr *promptQueueRepo) transition(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID, from, to string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.PromptQueueItem{}).
    Where("id = ? AND user_id = ? AND status = ?", itemID, userID, from).
    Updates(map[string]any{
      "status":     to,
      "updated_at": time.Now(),
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected == 1, nil
}

func (qr *promptQueueRepo) Delete(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", itemID).
    Delete(&types.PromptQueueItem{}).Error
}
