package services

import "errors"

// Sentinel errors the handler layer maps onto HTTP status codes.
var (
  // ErrNotFound covers both genuinely missing rows and rows owned by another
  // user; the two are indistinguishable to the caller.
  ErrNotFound = errors.New("resource not found")

  // ErrQueueItemNotPending is returned when execution is requested for a
  // queue item that is not in the pending state.
  ErrQueueItemNotPending = errors.New("queue item is not pending")
)
