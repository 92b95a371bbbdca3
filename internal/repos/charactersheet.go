package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type CharacterSheetRepo interface {
  Create(ctx context.Context, tx *gorm.DB, sheets []*types.CharacterSheet) ([]*types.CharacterSheet, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, sheetIDs []uuid.UUID) ([]*types.CharacterSheet, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CharacterSheet, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) error
}

type characterSheetRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCharacterSheetRepo(db *gorm.DB, baseLog *logger.Logger) CharacterSheetRepo {
  repoLog := baseLog.With("repo", "CharacterSheetRepo")
  return &characterSheetRepo{db: db, log: repoLog}
}

func (cr *characterSheetRepo) Create(ctx context.Context, tx *gorm.DB, sheets []*types.CharacterSheet) ([]*types.CharacterSheet, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(sheets) == 0 {
    return []*types.CharacterSheet{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&sheets).Error; err != nil {
    return nil, err
  }
  return sheets, nil
}

func (cr *characterSheetRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sheetIDs []uuid.UUID) ([]*types.CharacterSheet, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.CharacterSheet
  if len(sheetIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", sheetIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *characterSheetRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CharacterSheet, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.CharacterSheet
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *characterSheetRepo) UpdateFields(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.CharacterSheet{}).
    Where("id = ?", sheetID).
    Updates(fields).Error
}

func (cr *characterSheetRepo) Delete(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", sheetID).
    Delete(&types.CharacterSheet{}).Error
}
