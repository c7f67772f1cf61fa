package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// IsConnected reports whether the socket is up.
func (wa *WhatsAppAdapter) IsConnected() bool {
	cli := wa.getClient()
	return cli != nil && cli.IsConnected()
}

// IsLoggedIn reports whether the device is paired and authenticated.
func (wa *WhatsAppAdapter) IsLoggedIn() bool {
	cli := wa.getClient()
	return cli != nil && cli.IsLoggedIn()
}

// Start creates the whatsmeow client for this account and connects. Safe to
// call again after a disconnect, it reuses the existing client.
func (wa *WhatsAppAdapter) Start(ctx context.Context) error {
	wa.clientMu.Lock()
	defer wa.clientMu.Unlock()

	// Reconnect path: client already initialized
	if wa.client != nil {
		if !wa.client.IsConnected() {
			return wa.client.Connect()
		}
		return nil
	}

	if err := os.MkdirAll(wa.storageDir, 0755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	dbPath := filepath.Join(wa.storageDir, fmt.Sprintf("whatsapp-%s.db", wa.accountID))
	dbLog := waLog.Stdout("DB-"+shortID(wa.accountID), coreconfig.Global.Whatsapp.LogLevel, true)

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", dbPath), dbLog)
	if err != nil {
		return fmt.Errorf("failed to init session db: %w", err)
	}
	wa.container = container

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if device == nil {
		device = container.NewDevice()
	}

	platform := coreconfig.Global.App.Platform
	osName := coreconfig.Global.App.OS
	store.DeviceProps.PlatformType = &platform
	store.DeviceProps.Os = &osName

	clientLog := waLog.Stdout("Client-"+shortID(wa.accountID), coreconfig.Global.Whatsapp.LogLevel, true)
	wa.client = whatsmeow.NewClient(device, clientLog)
	// The registry owns the restart policy, whatsmeow must not fight it.
	wa.client.EnableAutoReconnect = false
	wa.client.AutoTrustIdentity = true

	wa.handlerID = wa.client.AddEventHandler(wa.handleEvent)

	if err := wa.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect client: %w", err)
	}
	return nil
}

// Stop disconnects and closes the session store. The event channel is closed
// so the registry consumer can exit.
func (wa *WhatsAppAdapter) Stop(ctx context.Context) error {
	wa.clientMu.Lock()
	defer wa.clientMu.Unlock()

	if wa.client != nil {
		if wa.handlerID != 0 {
			wa.client.RemoveEventHandler(wa.handlerID)
			wa.handlerID = 0
		}
		wa.client.Disconnect()
	}
	if wa.container != nil {
		if err := wa.container.Close(); err != nil {
			logrus.Errorf("[WHATSAPP] Failed to close session db for %s: %v", wa.accountID, err)
		}
		wa.container = nil
	}

	wa.closeOnce.Do(func() { close(wa.events) })
	return nil
}

// Logout invalidates the paired device and removes the local session file so
// the next Start demands a fresh QR scan.
func (wa *WhatsAppAdapter) Logout(ctx context.Context) error {
	wa.clientMu.Lock()
	cli := wa.client
	wa.clientMu.Unlock()

	if cli == nil {
		return nil
	}

	if err := cli.Logout(ctx); err != nil {
		logrus.Warnf("[WHATSAPP] Logout request for %s failed: %v", wa.accountID, err)
	}
	cli.Disconnect()

	dbPath := filepath.Join(wa.storageDir, fmt.Sprintf("whatsapp-%s.db", wa.accountID))
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session db: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
