package repository

import (
	"context"
	"errors"
	"time"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotCancellable is returned when a cancel races with dispatch: the
	// message already left the PENDING state.
	ErrNotCancellable = errors.New("message is not pending")
)

type IMessageRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, msg domainMessage.ScheduledMessage) error
	GetByID(ctx context.Context, id string) (domainMessage.ScheduledMessage, error)
	List(ctx context.Context, status string, limit int) ([]domainMessage.ScheduledMessage, error)

	// ClaimDue atomically moves up to limit due PENDING messages to
	// PROCESSING and returns the ones this caller won. A message claimed by
	// a concurrent cycle is skipped, never returned twice.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]domainMessage.ScheduledMessage, error)

	MarkSent(ctx context.Context, id, accountID string, at time.Time) error
	MarkPartial(ctx context.Context, id, accountID, errMsg string, at time.Time) error
	MarkFailed(ctx context.Context, id, accountID, errMsg string) error

	// Cancel flips a PENDING message to CANCELLED. Returns ErrNotCancellable
	// if the message was already claimed or finished.
	Cancel(ctx context.Context, id string) error

	// FailStalled fails every PENDING or PROCESSING message scheduled before
	// the cutoff. Returns how many were reaped.
	FailStalled(ctx context.Context, cutoff time.Time, reason string) (int64, error)

	CreateAttempt(ctx context.Context, attempt domainMessage.DeliveryAttempt) error
	ListAttempts(ctx context.Context, messageID string) ([]domainMessage.DeliveryAttempt, error)
}
