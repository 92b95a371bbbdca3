package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

// Delay between items of a bulk tag update, matching the other sequential
// bulk loops.
const bulkTagDelay = 300 * time.Millisecond

var taggableEntityTypes = map[string]bool{
  "character_sheet": true,
  "scene_master":    true,
  "prop_master":     true,
  "output":          true,
}

// TagTarget names one row of a bulk tag assignment.
type TagTarget struct {
  EntityType string    `json:"entity_type"`
  EntityID   uuid.UUID `json:"entity_id"`
}

// TagTargetError records one failed target of a bulk run.
type TagTargetError struct {
  Target TagTarget `json:"target"`
  Error  string    `json:"error"`
}

type TagService interface {
  CreateTag(ctx context.Context, userID uuid.UUID, name, color string) (*types.Tag, error)
  ListTags(ctx context.Context, userID uuid.UUID) ([]*types.Tag, error)
  UpdateTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, fields map[string]any) (*types.Tag, error)
  DeleteTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID) error
  AssignTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, entityType string, entityID uuid.UUID) error
  UnassignTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, entityType string, entityID uuid.UUID) error
  ListTagsForEntity(ctx context.Context, userID uuid.UUID, entityType string, entityID uuid.UUID) ([]*types.Tag, error)
  BulkAssign(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, targets []TagTarget) (int, []TagTargetError)
}

type tagService struct {
  db      *gorm.DB
  log     *logger.Logger
  tagRepo repos.TagRepo
}

func NewTagService(db *gorm.DB, log *logger.Logger, tagRepo repos.TagRepo) TagService {
  return &tagService{
    db:      db,
    log:     log.With("service", "TagService"),
    tagRepo: tagRepo,
  }
}

func (ts *tagService) CreateTag(ctx context.Context, userID uuid.UUID, name, color string) (*types.Tag, error) {
  name = strings.TrimSpace(name)
  if name == "" {
    return nil, fmt.Errorf("Name is required")
  }
  tag := &types.Tag{
    ID:     uuid.New(),
    UserID: userID,
    Name:   name,
    Color:  strings.TrimSpace(color),
  }
  if _, cErr := ts.tagRepo.Create(ctx, nil, []*types.Tag{tag}); cErr != nil {
    return nil, fmt.Errorf("Failed to create tag: %w", cErr)
  }
  return tag, nil
}

func (ts *tagService) getOwned(ctx context.Context, userID uuid.UUID, tagID uuid.UUID) (*types.Tag, error) {
  tags, gErr := ts.tagRepo.GetByIDs(ctx, nil, []uuid.UUID{tagID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get tag: %w", gErr)
  }
  if len(tags) == 0 || tags[0].UserID != userID {
    return nil, ErrNotFound
  }
  return tags[0], nil
}

func (ts *tagService) ListTags(ctx context.Context, userID uuid.UUID) ([]*types.Tag, error) {
  return ts.tagRepo.ListByUserID(ctx, nil, userID)
}

func (ts *tagService) UpdateTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, fields map[string]any) (*types.Tag, error) {
  if _, err := ts.getOwned(ctx, userID, tagID); err != nil {
    return nil, err
  }
  allowed := filterFields(fields, "name", "color")
  if len(allowed) == 0 {
    return nil, fmt.Errorf("No updatable fields provided")
  }
  if uErr := ts.tagRepo.UpdateFields(ctx, nil, tagID, allowed); uErr != nil {
    return nil, fmt.Errorf("Failed to update tag: %w", uErr)
  }
  return ts.getOwned(ctx, userID, tagID)
}

func (ts *tagService) DeleteTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID) error {
  if _, err := ts.getOwned(ctx, userID, tagID); err != nil {
    return err
  }
  if dErr := ts.tagRepo.Delete(ctx, nil, tagID); dErr != nil {
    return fmt.Errorf("Failed to delete tag: %w", dErr)
  }
  return nil
}

func (ts *tagService) AssignTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, entityType string, entityID uuid.UUID) error {
  if !taggableEntityTypes[entityType] {
    return fmt.Errorf("Entity type %q is not taggable", entityType)
  }
  if _, err := ts.getOwned(ctx, userID, tagID); err != nil {
    return err
  }
  assignment := &types.TagAssignment{
    ID:         uuid.New(),
    TagID:      tagID,
    EntityType: entityType,
    EntityID:   entityID,
  }
  if aErr := ts.tagRepo.Assign(ctx, nil, assignment); aErr != nil {
    return fmt.Errorf("Failed to assign tag: %w", aErr)
  }
  return nil
}

func (ts *tagService) UnassignTag(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, entityType string, entityID uuid.UUID) error {
  if _, err := ts.getOwned(ctx, userID, tagID); err != nil {
    return err
  }
  if uErr := ts.tagRepo.Unassign(ctx, nil, tagID, entityType, entityID); uErr != nil {
    return fmt.Errorf("Failed to unassign tag: %w", uErr)
  }
  return nil
}

func (ts *tagService) ListTagsForEntity(ctx context.Context, userID uuid.UUID, entityType string, entityID uuid.UUID) ([]*types.Tag, error) {
  assignments, lErr := ts.tagRepo.ListAssignmentsByEntity(ctx, nil, entityType, entityID)
  if lErr != nil {
    return nil, fmt.Errorf("Failed to list tag assignments: %w", lErr)
  }
  if len(assignments) == 0 {
    return []*types.Tag{}, nil
  }
  tagIDs := make([]uuid.UUID, 0, len(assignments))
  for _, a := range assignments {
    tagIDs = append(tagIDs, a.TagID)
  }
  tags, gErr := ts.tagRepo.GetByIDs(ctx, nil, tagIDs)
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get tags: %w", gErr)
  }
  owned := make([]*types.Tag, 0, len(tags))
  for _, tag := range tags {
    if tag.UserID == userID {
      owned = append(owned, tag)
    }
  }
  return owned, nil
}

// BulkAssign applies one tag to many rows sequentially with a fixed delay
// between items. Per-item failures accumulate; the batch never aborts early
// except on context cancellation.
func (ts *tagService) BulkAssign(ctx context.Context, userID uuid.UUID, tagID uuid.UUID, targets []TagTarget) (int, []TagTargetError) {
  var assigned int
  var targetErrors []TagTargetError

  for i, target := range targets {
    if i > 0 {
      select {
      case <-ctx.Done():
        targetErrors = append(targetErrors, TagTargetError{Target: target, Error: ctx.Err().Error()})
        return assigned, targetErrors
      case <-time.After(bulkTagDelay):
      }
    }
    if err := ts.AssignTag(ctx, userID, tagID, target.EntityType, target.EntityID); err != nil {
      targetErrors = append(targetErrors, TagTargetError{Target: target, Error: err.Error()})
      continue
    }
    assigned++
  }
  return assigned, targetErrors
}
