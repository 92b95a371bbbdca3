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

type OutputService interface {
  GetOutput(ctx context.Context, userID uuid.UUID, outputID uuid.UUID) (*types.Output, error)
  ListOutputs(ctx context.Context, userID uuid.UUID) ([]*types.Output, error)
  DeleteOutput(ctx context.Context, userID uuid.UUID, outputID uuid.UUID) error
}

type outputService struct {
  db            *gorm.DB
  log           *logger.Logger
  outputRepo    repos.OutputRepo
  bucketService BucketService
}

func NewOutputService(db *gorm.DB, log *logger.Logger, outputRepo repos.OutputRepo, bucketService BucketService) OutputService {
  return &outputService{
    db:            db,
    log:           log.With("service", "OutputService"),
    outputRepo:    outputRepo,
    bucketService: bucketService,
  }
}

func (os *outputService) getOwned(ctx context.Context, userID uuid.UUID, outputID uuid.UUID) (*types.Output, error) {
  outputs, gErr := os.outputRepo.GetByIDs(ctx, nil, []uuid.UUID{outputID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get output: %w", gErr)
  }
  if len(outputs) == 0 || outputs[0].UserID != userID {
    return nil, ErrNotFound
  }
  return outputs[0], nil
}

func (os *outputService) GetOutput(ctx context.Context, userID uuid.UUID, outputID uuid.UUID) (*types.Output, error) {
  return os.getOwned(ctx, userID, outputID)
}

func (os *outputService) ListOutputs(ctx context.Context, userID uuid.UUID) ([]*types.Output, error) {
  return os.outputRepo.ListByUserID(ctx, nil, userID)
}

func (os *outputService) DeleteOutput(ctx context.Context, userID uuid.UUID, outputID uuid.UUID) error {
  output, err := os.getOwned(ctx, userID, outputID)
  if err != nil {
    return err
  }
  if dErr := os.outputRepo.Delete(ctx, nil, outputID); dErr != nil {
    return fmt.Errorf("Failed to delete output: %w", dErr)
  }
  if output.StorageKey != "" {
    if delErr := os.bucketService.DeleteFile(ctx, output.StorageKey); delErr != nil {
      os.log.Warn("Failed to delete output object (ignored)", "key", output.StorageKey, "error", delErr)
    }
  }
  return nil
}
