package account

import "time"

// Account is a registered sender identity. One live session exists per
// account at most.
type Account struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	IsConnected bool      `json:"is_connected"`
	SentToday   int       `json:"sent_today"`
	DailyLimit  int       `json:"daily_limit"`
	LastResetAt time.Time `json:"last_reset_at"`
	SessionData string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasQuota reports whether the account can still send today.
func (a Account) HasQuota() bool {
	return a.SentToday < a.DailyLimit
}
