package session

import (
	"context"
	"time"

	domainDirectory "github.com/AzielCF/az-blast/domains/directory"
)

type EventType string

const (
	EventQR           EventType = "qrcode"
	EventReady        EventType = "ready"
	EventDisconnected EventType = "disconnected"
	EventAuthFailure  EventType = "auth_failure"
)

// Event is the driver-to-registry notification. Drivers only emit events,
// all state transitions happen inside the registry.
type Event struct {
	Type   EventType
	Code   string // QR payload for EventQR
	Reason string
}

type SendResponse struct {
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Driver abstracts the chat client backing a session.
type Driver interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Logout(ctx context.Context) error
	IsConnected() bool
	IsLoggedIn() bool
	DeviceJID() string

	SendText(ctx context.Context, jid, text string) (SendResponse, error)
	SendImage(ctx context.Context, jid, imageURL, caption string) (SendResponse, error)
	SendDocument(ctx context.Context, jid, documentURL, fileName string) (SendResponse, error)

	GetContacts(ctx context.Context) ([]domainDirectory.Contact, error)
	GetGroups(ctx context.Context) ([]domainDirectory.Group, error)

	// Events returns the channel the driver publishes lifecycle events on.
	// The channel is closed when the driver stops for good.
	Events() <-chan Event
}

// DriverFactory builds a driver for the given account id.
type DriverFactory func(accountID string) Driver
