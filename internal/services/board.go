package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type BoardService interface {
  CreateBoard(ctx context.Context, userID uuid.UUID, studioID uuid.UUID, title string, workflowID *uuid.UUID) (*types.Board, error)
  GetBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) (*types.Board, error)
  ListBoards(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) ([]*types.Board, error)
  UpdateBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID, fields map[string]any) (*types.Board, error)
  ReorderBoards(ctx context.Context, userID uuid.UUID, studioID uuid.UUID, orderedBoardIDs []uuid.UUID) error
  DeleteBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) error
}

type boardService struct {
  db         *gorm.DB
  log        *logger.Logger
  boardRepo  repos.BoardRepo
  studioRepo repos.StudioRepo
}

func NewBoardService(db *gorm.DB, log *logger.Logger, boardRepo repos.BoardRepo, studioRepo repos.StudioRepo) BoardService {
  return &boardService{
    db:         db,
    log:        log.With("service", "BoardService"),
    boardRepo:  boardRepo,
    studioRepo: studioRepo,
  }
}

// ownsStudio enforces the board's ownership chain: board -> studio -> user.
func (bs *boardService) ownsStudio(ctx context.Context, tx *gorm.DB, userID uuid.UUID, studioID uuid.UUID) error {
  studios, gErr := bs.studioRepo.GetByIDs(ctx, tx, []uuid.UUID{studioID})
  if gErr != nil {
    return fmt.Errorf("Failed to get studio: %w", gErr)
  }
  if len(studios) == 0 || studios[0].UserID != userID {
    return ErrNotFound
  }
  return nil
}

func (bs *boardService) getOwned(ctx context.Context, tx *gorm.DB, userID uuid.UUID, boardID uuid.UUID) (*types.Board, error) {
  boards, gErr := bs.boardRepo.GetByIDs(ctx, tx, []uuid.UUID{boardID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get board: %w", gErr)
  }
  if len(boards) == 0 {
    return nil, ErrNotFound
  }
  board := boards[0]
  if err := bs.ownsStudio(ctx, tx, userID, board.StudioID); err != nil {
    return nil, err
  }
  return board, nil
}

func (bs *boardService) CreateBoard(ctx context.Context, userID uuid.UUID, studioID uuid.UUID, title string, workflowID *uuid.UUID) (*types.Board, error) {
  title = strings.TrimSpace(title)
  if title == "" {
    return nil, fmt.Errorf("Title is required")
  }
  if err := bs.ownsStudio(ctx, nil, userID, studioID); err != nil {
    return nil, err
  }

  // New boards append to the end of the studio's sequence.
  siblings, lsErr := bs.boardRepo.ListByStudioID(ctx, nil, studioID)
  if lsErr != nil {
    return nil, fmt.Errorf("Failed to list boards: %w", lsErr)
  }

  board := &types.Board{
    ID:            uuid.New(),
    StudioID:      studioID,
    Title:         title,
    SequenceOrder: len(siblings),
    WorkflowID:    workflowID,
  }
  if _, cErr := bs.boardRepo.Create(ctx, nil, []*types.Board{board}); cErr != nil {
    return nil, fmt.Errorf("Failed to create board: %w", cErr)
  }
  return board, nil
}

func (bs *boardService) GetBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) (*types.Board, error) {
  return bs.getOwned(ctx, nil, userID, boardID)
}

func (bs *boardService) ListBoards(ctx context.Context, userID uuid.UUID, studioID uuid.UUID) ([]*types.Board, error) {
  if err := bs.ownsStudio(ctx, nil, userID, studioID); err != nil {
    return nil, err
  }
  return bs.boardRepo.ListByStudioID(ctx, nil, studioID)
}

func (bs *boardService) UpdateBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID, fields map[string]any) (*types.Board, error) {
  if _, err := bs.getOwned(ctx, nil, userID, boardID); err != nil {
    return nil, err
  }
  allowed := filterFields(fields, "title", "workflow_id", "duration_seconds")
  if len(allowed) == 0 {
    return nil, fmt.Errorf("No updatable fields provided")
  }
  if uErr := bs.boardRepo.UpdateFields(ctx, nil, boardID, allowed); uErr != nil {
    return nil, fmt.Errorf("Failed to update board: %w", uErr)
  }
  return bs.getOwned(ctx, nil, userID, boardID)
}

// ReorderBoards rewrites sequence_order for the whole studio in one
// transaction. The ordered list must name every live board exactly once.
func (bs *boardService) ReorderBoards(ctx context.Context, userID uuid.UUID, studioID uuid.UUID, orderedBoardIDs []uuid.UUID) error {
  if err := bs.ownsStudio(ctx, nil, userID, studioID); err != nil {
    return err
  }
  return bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    existing, lsErr := bs.boardRepo.ListByStudioID(ctx, tx, studioID)
    if lsErr != nil {
      return fmt.Errorf("Failed to list boards: %w", lsErr)
    }
    if len(existing) != len(orderedBoardIDs) {
      return fmt.Errorf("Reorder list must contain all %d boards", len(existing))
    }
    existingByID := make(map[uuid.UUID]*types.Board, len(existing))
    for _, b := range existing {
      existingByID[b.ID] = b
    }
    for position, boardID := range orderedBoardIDs {
      if _, ok := existingByID[boardID]; !ok {
        return fmt.Errorf("Board %s does not belong to studio", boardID)
      }
      if uErr := bs.boardRepo.UpdateFields(ctx, tx, boardID, map[string]any{"sequence_order": position}); uErr != nil {
        return fmt.Errorf("Failed to reorder board %s: %w", boardID, uErr)
      }
    }
    return nil
  })
}

func (bs *boardService) DeleteBoard(ctx context.Context, userID uuid.UUID, boardID uuid.UUID) error {
  if _, err := bs.getOwned(ctx, nil, userID, boardID); err != nil {
    return err
  }
  if dErr := bs.boardRepo.Delete(ctx, nil, boardID); dErr != nil {
    return fmt.Errorf("Failed to delete board: %w", dErr)
  }
  return nil
}
