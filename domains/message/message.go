package message

import (
	"context"
	"time"
)

type RecipientType string

const (
	RecipientTypeContact   RecipientType = "CONTACT"
	RecipientTypeGroup     RecipientType = "GROUP"
	RecipientTypeBroadcast RecipientType = "BROADCAST"
)

type Status string

const (
	// StatusPending messages are waiting for their scheduled time.
	StatusPending Status = "PENDING"
	// StatusProcessing marks a message claimed by a dispatch cycle.
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	// StatusPartial means some recipients got the message and some did not.
	StatusPartial   Status = "PARTIAL"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

type ScheduledMessage struct {
	ID            string        `json:"id"`
	Content       string        `json:"content"`
	Recipients    []string      `json:"recipients"`
	RecipientType RecipientType `json:"recipient_type"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	Status        Status        `json:"status"`
	Error         string        `json:"error,omitempty"`
	SentAt        *time.Time    `json:"sent_at,omitempty"`
	AccountID     string        `json:"account_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// DeliveryAttempt records the outcome for a single recipient of a message.
type DeliveryAttempt struct {
	ID        uint      `json:"id"`
	MessageID string    `json:"message_id"`
	Recipient string    `json:"recipient"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ScheduleRequest struct {
	Content       string        `json:"content" form:"content"`
	Recipients    []string      `json:"recipients" form:"recipients"`
	RecipientType RecipientType `json:"recipient_type" form:"recipient_type"`
	ScheduledAt   time.Time     `json:"scheduled_at" form:"scheduled_at"`
}

type ListRequest struct {
	Status string `json:"status" query:"status"`
	Limit  int    `json:"limit" query:"limit"`
}

type MessageDetail struct {
	ScheduledMessage
	Attempts []DeliveryAttempt `json:"attempts,omitempty"`
}

type IMessageUsecase interface {
	Schedule(ctx context.Context, request ScheduleRequest) (ScheduledMessage, error)
	Cancel(ctx context.Context, id string) error
	List(ctx context.Context, request ListRequest) ([]ScheduledMessage, error)
	GetByID(ctx context.Context, id string) (MessageDetail, error)
}
