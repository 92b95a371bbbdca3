package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type BoardRepo interface {
  Create(ctx context.Context, tx *gorm.DB, boards []*types.Board) ([]*types.Board, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, boardIDs []uuid.UUID) ([]*types.Board, error)
  ListByStudioID(ctx context.Context, tx *gorm.DB, studioID uuid.UUID) ([]*types.Board, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, boardID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) error
}

type boardRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewBoardRepo(db *gorm.DB, baseLog *logger.Logger) BoardRepo {
  repoLog := baseLog.With("repo", "BoardRepo")
  return &boardRepo{db: db, log: repoLog}
}

func (br *boardRepo) Create(ctx context.Context, tx *gorm.DB, boards []*types.Board) ([]*types.Board, error) {
  transaction := tx
  if transaction == nil {
    transaction = br.db
  }
  if len(boards) == 0 {
    return []*types.Board{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&boards).Error; err != nil {
    return nil, err
  }
  return boards, nil
}

func (br *boardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, boardIDs []uuid.UUID) ([]*types.Board, error) {
  transaction := tx
  if transaction == nil {
    transaction = br.db
  }
  var results []*types.Board
  if len(boardIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", boardIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (br *boardRepo) ListByStudioID(ctx context.Context, tx *gorm.DB, studioID uuid.UUID) ([]*types.Board, error) {
  transaction := tx
  if transaction == nil {
    transaction = br.db
  }
  var results []*types.Board
  if err := transaction.WithContext(ctx).
    Where("studio_id = ?", studioID).
    Order("sequence_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (br *boardRepo) UpdateFields(ctx context.Context, tx *gorm.DB, boardID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = br.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Board{}).
    Where("id = ?", boardID).
    Updates(fields).Error
}

func (br *boardRepo) Delete(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = br.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", boardID).
    Delete(&types.Board{}).Error
}
