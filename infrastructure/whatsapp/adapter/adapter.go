package adapter

import (
	"strings"
	"sync"

	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
)

// WhatsAppAdapter wraps a whatsmeow client for a single account. It never
// mutates session state itself: lifecycle changes are reported through the
// event channel and handled by the registry.
type WhatsAppAdapter struct {
	accountID  string
	storageDir string

	clientMu  sync.RWMutex
	client    *whatsmeow.Client
	container *sqlstore.Container
	handlerID uint32

	events    chan domainSession.Event
	closeOnce sync.Once
}

// NewAdapter prepares an adapter for the given account. The client is not
// created until Start.
func NewAdapter(accountID, storageDir string) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		accountID:  accountID,
		storageDir: storageDir,
		events:     make(chan domainSession.Event, 16),
	}
}

// Events returns the lifecycle event channel consumed by the registry.
func (wa *WhatsAppAdapter) Events() <-chan domainSession.Event {
	return wa.events
}

func (wa *WhatsAppAdapter) getClient() *whatsmeow.Client {
	wa.clientMu.RLock()
	defer wa.clientMu.RUnlock()
	return wa.client
}

// DeviceJID returns the logged-in device JID, empty when not paired yet.
func (wa *WhatsAppAdapter) DeviceJID() string {
	cli := wa.getClient()
	if cli == nil || cli.Store == nil || cli.Store.ID == nil {
		return ""
	}
	return cli.Store.ID.ToNonAD().String()
}

// parseJID converts a string to a types.JID, defaulting plain numbers to
// user JIDs.
func (wa *WhatsAppAdapter) parseJID(chatID string) (types.JID, error) {
	if strings.Contains(chatID, "@") {
		return types.ParseJID(chatID)
	}
	return types.NewJID(chatID, types.DefaultUserServer), nil
}

// emit publishes an event without ever blocking the whatsmeow callback
// goroutine. Dropping is acceptable: the registry re-reads live state on the
// next event.
func (wa *WhatsAppAdapter) emit(evt domainSession.Event) {
	select {
	case wa.events <- evt:
	default:
		logrus.Warnf("[WHATSAPP] Event channel full for %s, dropping %s", wa.accountID, evt.Type)
	}
}
