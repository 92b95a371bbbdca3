package repos

import (
  "context"
  "testing"

  "github.com/google/uuid"

  "github.com/kazika-dev/kazika-studio-sub003/internal/repos/testutil"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

func TestClaimProcessing_ClaimsPendingOnce(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "claim-once@example.com")
  item := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)
  repo := NewPromptQueueRepo(tx, testutil.Logger(t))

  claimed, err := repo.ClaimProcessing(context.Background(), tx, user.ID, item.ID)
  if err != nil {
    t.Fatalf("claim: %v", err)
  }
  if !claimed {
    t.Fatalf("expected first claim to succeed")
  }

  again, err := repo.ClaimProcessing(context.Background(), tx, user.ID, item.ID)
  if err != nil {
    t.Fatalf("second claim: %v", err)
  }
  if again {
    t.Fatalf("expected second claim to lose")
  }

  items, err := repo.GetByIDs(context.Background(), tx, []uuid.UUID{item.ID})
  if err != nil || len(items) != 1 {
    t.Fatalf("reload item: %v (%d items)", err, len(items))
  }
  if items[0].Status != types.QueueStatusProcessing {
    t.Fatalf("expected status processing, got %q", items[0].Status)
  }
}

func TestClaimProcessing_RejectsTerminalStatuses(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "claim-terminal@example.com")
  repo := NewPromptQueueRepo(tx, testutil.Logger(t))

  for _, status := range []string{types.QueueStatusCompleted, types.QueueStatusFailed, types.QueueStatusCancelled} {
    item := testutil.SeedQueueItem(t, tx, user.ID, status)
    claimed, err := repo.ClaimProcessing(context.Background(), tx, user.ID, item.ID)
    if err != nil {
      t.Fatalf("claim %s item: %v", status, err)
    }
    if claimed {
      t.Fatalf("expected claim on %s item to fail", status)
    }
  }
}

func TestClaimProcessing_ScopedToOwner(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  owner := testutil.SeedUser(t, tx, "claim-owner@example.com")
  other := testutil.SeedUser(t, tx, "claim-other@example.com")
  item := testutil.SeedQueueItem(t, tx, owner.ID, types.QueueStatusPending)
  repo := NewPromptQueueRepo(tx, testutil.Logger(t))

  claimed, err := repo.ClaimProcessing(context.Background(), tx, other.ID, item.ID)
  if err != nil {
    t.Fatalf("claim: %v", err)
  }
  if claimed {
    t.Fatalf("expected foreign claim to fail")
  }
}

func TestCancelPending_OnlyCancelsPending(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "cancel@example.com")
  repo := NewPromptQueueRepo(tx, testutil.Logger(t))

  pending := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)
  cancelled, err := repo.CancelPending(context.Background(), tx, user.ID, pending.ID)
  if err != nil {
    t.Fatalf("cancel: %v", err)
  }
  if !cancelled {
    t.Fatalf("expected cancel of pending item to succeed")
  }

  processing := testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusProcessing)
  cancelled, err = repo.CancelPending(context.Background(), tx, user.ID, processing.ID)
  if err != nil {
    t.Fatalf("cancel processing: %v", err)
  }
  if cancelled {
    t.Fatalf("expected cancel of processing item to fail")
  }
}

func TestListByUserID_FiltersByStatus(t *testing.T) {
  tx := testutil.Tx(t, testutil.DB(t))
  user := testutil.SeedUser(t, tx, "list-status@example.com")
  repo := NewPromptQueueRepo(tx, testutil.Logger(t))

  testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)
  testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusPending)
  testutil.SeedQueueItem(t, tx, user.ID, types.QueueStatusFailed)

  all, err := repo.ListByUserID(context.Background(), tx, user.ID, "")
  if err != nil {
    t.Fatalf("list all: %v", err)
  }
  if len(all) != 3 {
    t.Fatalf("expected 3 items, got %d", len(all))
  }

  pending, err := repo.ListByUserID(context.Background(), tx, user.ID, types.QueueStatusPending)
  if err != nil {
    t.Fatalf("list pending: %v", err)
  }
  if len(pending) != 2 {
    t.Fatalf("expected 2 pending items, got %d", len(pending))
  }
}
