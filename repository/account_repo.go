package repository

import (
	"context"
	"errors"
	"time"

	domainAccount "github.com/AzielCF/az-blast/domains/account"
)

var ErrAccountNotFound = errors.New("account not found")

type IAccountRepository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, account domainAccount.Account) error
	GetByID(ctx context.Context, id string) (domainAccount.Account, error)
	List(ctx context.Context) ([]domainAccount.Account, error)
	Delete(ctx context.Context, id string) error

	// SetConnected persists the live connection flag plus the device
	// snapshot captured at login. An empty sessionData leaves the stored
	// snapshot untouched so a plain disconnect stays restorable.
	SetConnected(ctx context.Context, id string, connected bool, sessionData string) error

	// ClearSessionData marks the account disconnected and drops the stored
	// device snapshot so boot-time restore skips it until a new pairing.
	ClearSessionData(ctx context.Context, id string) error

	// ListEligible returns active, connected accounts ordered by sent_today
	// ascending so the least used one comes first.
	ListEligible(ctx context.Context) ([]domainAccount.Account, error)

	// IncrementSentToday adds one delivered recipient to the daily counter.
	IncrementSentToday(ctx context.Context, id string) error

	// ResetDailyCounters zeroes sent_today for accounts whose last reset
	// happened before the cutoff. Returns how many accounts were reset.
	ResetDailyCounters(ctx context.Context, cutoff, now time.Time) (int64, error)
}
