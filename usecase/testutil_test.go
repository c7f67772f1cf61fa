package usecase

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	domainAccount "github.com/AzielCF/az-blast/domains/account"
	domainDirectory "github.com/AzielCF/az-blast/domains/directory"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/AzielCF/az-blast/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepos(t *testing.T) (*repository.AccountGormRepository, *repository.MessageGormRepository) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	accounts := repository.NewAccountGormRepository(db)
	messages := repository.NewMessageGormRepository(db)
	require.NoError(t, accounts.Init(context.Background()))
	require.NoError(t, messages.Init(context.Background()))
	return accounts, messages
}

func seedAccount(t *testing.T, accounts repository.IAccountRepository, id string, connected bool, sentToday, limit int) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, accounts.Save(context.Background(), domainAccount.Account{
		ID:          id,
		PhoneNumber: "52133123400" + id,
		Name:        "acct-" + id,
		IsActive:    true,
		IsConnected: connected,
		SentToday:   sentToday,
		DailyLimit:  limit,
		LastResetAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

// fakeDriver is an in-memory Driver for service tests.
type fakeDriver struct {
	mu       sync.Mutex
	events   chan domainSession.Event
	sent     []string
	failFor  map[string]error
	panicFor map[string]bool
	startErr error
	starts   int
	closed   bool

	connected bool
	loggedIn  bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		events:   make(chan domainSession.Event, 16),
		failFor:  make(map[string]error),
		panicFor: make(map[string]bool),
	}
}

func (d *fakeDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.starts++
	if d.startErr != nil {
		return d.startErr
	}
	d.connected = true
	d.loggedIn = true
	return nil
}

func (d *fakeDriver) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	return nil
}

func (d *fakeDriver) Logout(ctx context.Context) error { return nil }

func (d *fakeDriver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *fakeDriver) IsLoggedIn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loggedIn
}

func (d *fakeDriver) DeviceJID() string { return "5213312340000:1@s.whatsapp.net" }

func (d *fakeDriver) SendText(ctx context.Context, jid, text string) (domainSession.SendResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panicFor[jid] {
		panic("driver exploded for " + jid)
	}
	if err, ok := d.failFor[jid]; ok {
		return domainSession.SendResponse{}, err
	}
	d.sent = append(d.sent, jid)
	return domainSession.SendResponse{MessageID: "wamid-" + jid, Timestamp: time.Now().UTC()}, nil
}

func (d *fakeDriver) SendImage(ctx context.Context, jid, imageURL, caption string) (domainSession.SendResponse, error) {
	return d.SendText(ctx, jid, caption)
}

func (d *fakeDriver) SendDocument(ctx context.Context, jid, documentURL, fileName string) (domainSession.SendResponse, error) {
	return d.SendText(ctx, jid, fileName)
}

func (d *fakeDriver) GetContacts(ctx context.Context) ([]domainDirectory.Contact, error) {
	return []domainDirectory.Contact{{JID: "5213312340001@s.whatsapp.net", Phone: "5213312340001", Name: "Test"}}, nil
}

func (d *fakeDriver) GetGroups(ctx context.Context) ([]domainDirectory.Group, error) {
	return []domainDirectory.Group{{JID: "1234-567@g.us", Name: "Test Group", Participants: 3}}, nil
}

func (d *fakeDriver) Events() <-chan domainSession.Event { return d.events }

func (d *fakeDriver) sentJIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sent...)
}

// fakeRegistry maps account ids to drivers without real lifecycle handling.
type fakeRegistry struct {
	drivers map[string]domainSession.Driver
	ready   map[string]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		drivers: make(map[string]domainSession.Driver),
		ready:   make(map[string]bool),
	}
}

func (f *fakeRegistry) add(accountID string, driver domainSession.Driver, ready bool) {
	f.drivers[accountID] = driver
	f.ready[accountID] = ready
}

func (f *fakeRegistry) IsReady(accountID string) bool { return f.ready[accountID] }

func (f *fakeRegistry) Driver(accountID string) (domainSession.Driver, error) {
	d, ok := f.drivers[accountID]
	if !ok {
		return nil, pkgError.SessionNotFoundError("session not found: " + accountID)
	}
	return d, nil
}

func testDispatchConfig() coreconfig.DispatchConfig {
	return coreconfig.DispatchConfig{
		Interval:     time.Hour, // cycles run manually in tests
		BatchSize:    10,
		SendDelay:    time.Millisecond,
		SendTimeout:  5 * time.Second,
		StallTimeout: time.Hour,
	}
}
