package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type APIKeyRepo interface {
  Create(ctx context.Context, tx *gorm.DB, keys []*types.APIKey) ([]*types.APIKey, error)
  GetByHash(ctx context.Context, tx *gorm.DB, keyHash string) (*types.APIKey, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.APIKey, error)
  TouchLastUsed(ctx context.Context, tx *gorm.DB, keyID uuid.UUID, at time.Time) error
  Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keyID uuid.UUID) error
}

type apiKeyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
  repoLog := baseLog.With("repo", "APIKeyRepo")
  return &apiKeyRepo{db: db, log: repoLog}
}

func (kr *apiKeyRepo) Create(ctx context.Context, tx *gorm.DB, keys []*types.APIKey) ([]*types.APIKey, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }
  if len(keys) == 0 {
    return []*types.APIKey{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&keys).Error; err != nil {
    return nil, err
  }
  return keys, nil
}

func (kr *apiKeyRepo) GetByHash(ctx context.Context, tx *gorm.DB, keyHash string) (*types.APIKey, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }
  var results []*types.APIKey
  if err := transaction.WithContext(ctx).
    Where("key_hash = ?", keyHash).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (kr *apiKeyRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.APIKey, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }
  var results []*types.APIKey
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (kr *apiKeyRepo) TouchLastUsed(ctx context.Context, tx *gorm.DB, keyID uuid.UUID, at time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.APIKey{}).
    Where("id = ?", keyID).
    Update("last_used_at", at).Error
}

func (kr *apiKeyRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keyID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", keyID, userID).
    Delete(&types.APIKey{}).Error
}
