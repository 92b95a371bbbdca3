package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type StepService interface {
  CreateStep(ctx context.Context, userID uuid.UUID, boardID uuid.UUID, workflowID uuid.UUID) (*types.Step, error)
  GetStep(ctx context.Context, userID uuid.UUID, stepID uuid.UUID) (*types.Step, error)
  ListSteps(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) ([]*types.Step, error)
  DeleteStep(ctx context.Context, userID uuid.UUID, stepID uuid.UUID) error
}

type stepService struct {
  db           *gorm.DB
  log          *logger.Logger
  stepRepo     repos.StepRepo
  boardRepo    repos.BoardRepo
  studioRepo   repos.StudioRepo
  workflowRepo repos.WorkflowRepo
}

func NewStepService(db *gorm.DB, log *logger.Logger, stepRepo repos.StepRepo, boardRepo repos.BoardRepo, studioRepo repos.StudioRepo, workflowRepo repos.WorkflowRepo) StepService {
  return &stepService{
    db:           db,
    log:          log.With("service", "StepService"),
    stepRepo:     stepRepo,
    boardRepo:    boardRepo,
    studioRepo:   studioRepo,
    workflowRepo: workflowRepo,
  }
}

func (ss *stepService) ownsBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) (*types.Board, error) {
  boards, bErr := ss.boardRepo.GetByIDs(ctx, nil, []uuid.UUID{boardID})
  if bErr != nil {
    return nil, fmt.Errorf("Failed to get board: %w", bErr)
  }
  if len(boards) == 0 {
    return nil, ErrNotFound
  }
  studios, stErr := ss.studioRepo.GetByIDs(ctx, nil, []uuid.UUID{boards[0].StudioID})
  if stErr != nil {
    return nil, fmt.Errorf("Failed to get studio: %w", stErr)
  }
  if len(studios) == 0 || studios[0].UserID != userID {
    return nil, ErrNotFound
  }
  return boards[0], nil
}

func (ss *stepService) getOwned(ctx context.Context, userID uuid.UUID, stepID uuid.UUID) (*types.Step, error) {
  steps, gErr := ss.stepRepo.GetByIDs(ctx, nil, []uuid.UUID{stepID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get step: %w", gErr)
  }
  if len(steps) == 0 {
    return nil, ErrNotFound
  }
  if _, err := ss.ownsBoard(ctx, userID, steps[0].BoardID); err != nil {
    return nil, err
  }
  return steps[0], nil
}

func (ss *stepService) CreateStep(ctx context.Context, userID uuid.UUID, boardID uuid.UUID, workflowID uuid.UUID) (*types.Step, error) {
  if _, err := ss.ownsBoard(ctx, userID, boardID); err != nil {
    return nil, err
  }
  workflows, wErr := ss.workflowRepo.GetByIDs(ctx, nil, []uuid.UUID{workflowID})
  if wErr != nil {
    return nil, fmt.Errorf("Failed to get workflow: %w", wErr)
  }
  if len(workflows) == 0 || workflows[0].UserID != userID {
    return nil, ErrNotFound
  }

  step := &types.Step{
    ID:         uuid.New(),
    BoardID:    boardID,
    WorkflowID: workflowID,
    OutputData: []byte("{}"),
    Metadata:   []byte("{}"),
  }
  if _, cErr := ss.stepRepo.Create(ctx, nil, []*types.Step{step}); cErr != nil {
    return nil, fmt.Errorf("Failed to create step: %w", cErr)
  }
  return step, nil
}

func (ss *stepService) GetStep(ctx context.Context, userID uuid.UUID, stepID uuid.UUID) (*types.Step, error) {
  return ss.getOwned(ctx, userID, stepID)
}

func (ss *stepService) ListSteps(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) ([]*types.Step, error) {
  if _, err := ss.ownsBoard(ctx, userID, boardID); err != nil {
    return nil, err
  }
  return ss.stepRepo.ListByBoardID(ctx, nil, boardID)
}

func (ss *stepService) DeleteStep(ctx context.Context, userID uuid.UUID, stepID uuid.UUID) error {
  if _, err := ss.getOwned(ctx, userID, stepID); err != nil {
    return err
  }
  if dErr := ss.stepRepo.Delete(ctx, nil, stepID); dErr != nil {
    return fmt.Errorf("Failed to delete step: %w", dErr)
  }
  return nil
}
