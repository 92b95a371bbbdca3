package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type TagRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tags []*types.Tag) ([]*types.Tag, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]*types.Tag, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Tag, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, fields map[string]any) error
  Delete(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) error

  Assign(ctx context.Context, tx *gorm.DB, assignment *types.TagAssignment) error
  Unassign(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, entityType string, entityID uuid.UUID) error
  ListAssignmentsByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uuid.UUID) ([]*types.TagAssignment, error)
}

type tagRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
  repoLog := baseLog.With("repo", "TagRepo")
  return &tagRepo{db: db, log: repoLog}
}

func (tr *tagRepo) Create(ctx context.Context, tx *gorm.DB, tags []*types.Tag) ([]*types.Tag, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  if len(tags) == 0 {
    return []*types.Tag{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&tags).Error; err != nil {
    return nil, err
  }
  return tags, nil
}

func (tr *tagRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]*types.Tag, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Tag
  if len(tagIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", tagIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (tr *tagRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Tag, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Tag
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("name ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (tr *tagRepo) UpdateFields(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Tag{}).
    Where("id = ?", tagID).
    Updates(fields).Error
}

func (tr *tagRepo) Delete(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  return transaction.WithContext(ctx).
    Where("id = ?", tagID).
    Delete(&types.Tag{}).Error
}

func (tr *tagRepo) Assign(ctx context.Context, tx *gorm.DB, assignment *types.TagAssignment) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.TagAssignment{}).
    Where("tag_id = ? AND entity_type = ? AND entity_id = ?", assignment.TagID, assignment.EntityType, assignment.EntityID).
    Count(&count).Error; err != nil {
    return err
  }
  if count > 0 {
    return nil
  }
  return transaction.WithContext(ctx).Create(assignment).Error
}

func (tr *tagRepo) Unassign(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, entityType string, entityID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  return transaction.WithContext(ctx).
    Where("tag_id = ? AND entity_type = ? AND entity_id = ?", tagID, entityType, entityID).
    Delete(&types.TagAssignment{}).Error
}

func (tr *tagRepo) ListAssignmentsByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uuid.UUID) ([]*types.TagAssignment, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.TagAssignment
  if err := transaction.WithContext(ctx).
    Where("entity_type = ? AND entity_id = ?", entityType, entityID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
