package session

import "context"

type State string

const (
	StateInitializing State = "INITIALIZING"
	StateAwaitingScan State = "AWAITING_SCAN"
	StateReady        State = "READY"
	StateDisconnected State = "DISCONNECTED"
	StateAuthFailed   State = "AUTH_FAILED"
	StateDestroyed    State = "DESTROYED"
)

// Status is the externally visible snapshot of a live session.
type Status struct {
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	State        State  `json:"state"`
	Connected    bool   `json:"connected"`
	QRCode       string `json:"qr_code,omitempty"`
	RestartCount int    `json:"restart_count"`
	Reason       string `json:"reason,omitempty"`
	SentToday    int    `json:"sent_today"`
	DailyLimit   int    `json:"daily_limit"`
}

type CreateRequest struct {
	AccountID   string `json:"account_id" form:"account_id"`
	Name        string `json:"name" form:"name"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	DailyLimit  int    `json:"daily_limit" form:"daily_limit"`
}

type ISessionUsecase interface {
	Create(ctx context.Context, request CreateRequest) (Status, error)
	Destroy(ctx context.Context, accountID string) error
	GetStatus(ctx context.Context, accountID string) (Status, error)
	List(ctx context.Context) ([]Status, error)
	// IsReady reports whether the session is connected and authenticated
	// right now, without touching the database.
	IsReady(accountID string) bool
}
