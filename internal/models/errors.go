package models

import (
	"errors"
	"fmt"
)

// InvalidQuantityError reports a consumption request for zero or a
// negative quantity.
type InvalidQuantityError struct {
	Requested int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity: %d", e.Requested)
}

// InsufficientStockError reports that the batches for an item cannot
// cover the requested quantity. Nothing is committed when it is returned.
type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested=%d, available=%d, shortfall=%d",
		e.ItemID, e.Requested, e.Available, e.Shortfall())
}

// Shortfall is the quantity that could not be satisfied.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

// AlreadyClaimedError reports an existing warranty claim for a job.
type AlreadyClaimedError struct {
	JobID      int64
	ClaimJobID int64
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("job %d already has warranty claim %d", e.JobID, e.ClaimJobID)
}

// ErrInvalidStatusTransition reports a job status change outside the
// forward-only lifecycle.
var ErrInvalidStatusTransition = errors.New("invalid job status transition")

// ErrAlreadyHandedOver reports a second handover attempt; the handover
// timestamp is written exactly once.
var ErrAlreadyHandedOver = errors.New("job already handed over")

// ErrCodeInvalidOrExpired is returned for any failed verification attempt.
// The reason (absent, mismatched, used, expired) is deliberately not exposed.
var ErrCodeInvalidOrExpired = errors.New("invalid or expired verification code")

// DispatchError reports a notification channel failure. The stored
// verification code survives a dispatch failure.
type DispatchError struct {
	Contact string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("failed to dispatch notification to %s: %v", e.Contact, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
