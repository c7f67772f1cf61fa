package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
	"github.com/AzielCF/az-blast/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessage(t *testing.T, messages repository.IMessageRepository, recipients []string, rtype domainMessage.RecipientType, scheduledAt time.Time) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, messages.Create(context.Background(), domainMessage.ScheduledMessage{
		ID:            id,
		Content:       "hola equipo",
		Recipients:    recipients,
		RecipientType: rtype,
		ScheduledAt:   scheduledAt,
		Status:        domainMessage.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
	return id
}

func newTestQueue(t *testing.T, accounts repository.IAccountRepository, messages repository.IMessageRepository, registry *fakeRegistry) *DispatchQueue {
	t.Helper()
	selector := NewSessionSelector(accounts, registry)
	quota := NewQuotaService(accounts)
	return NewDispatchQueue(messages, selector, registry, quota, nil, testDispatchConfig())
}

func TestRunCycle_DeliversToAllRecipients(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, []string{"5213312340001", "5213312340002"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusSent, msg.Status)
	assert.Equal(t, "a1", msg.AccountID)
	require.NotNil(t, msg.SentAt)

	// El sufijo debe corresponder al tipo de destinatario
	assert.Equal(t, []string{"5213312340001@s.whatsapp.net", "5213312340002@s.whatsapp.net"}, driver.sentJIDs())

	acct, err := accounts.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, acct.SentToday, "quota counts one per delivered recipient")

	attempts, err := messages.ListAttempts(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	for _, a := range attempts {
		assert.True(t, a.Success)
	}
}

func TestRunCycle_PartialFailureUsesAttemptCounts(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	driver.failFor["5213312340002@s.whatsapp.net"] = errors.New("recipient unreachable")
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, []string{"5213312340001", "5213312340002", "5213312340003"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusPartial, msg.Status)
	assert.Equal(t, "partial failure: 1 of 3", msg.Error)

	acct, err := accounts.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, acct.SentToday, "failed recipients never touch the quota")

	attempts, err := messages.ListAttempts(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	failed := 0
	for _, a := range attempts {
		if !a.Success {
			failed++
			assert.Equal(t, "recipient unreachable", a.Error)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunCycle_NoAvailableSessionsFailsImmediately(t *testing.T) {
	accounts, messages := newTestRepos(t)
	// La cuenta existe pero ninguna sesion esta lista
	seedAccount(t, accounts, "a1", true, 0, 100)
	registry := newFakeRegistry()

	id := seedMessage(t, messages, []string{"5213312340001"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusFailed, msg.Status)
	assert.Equal(t, "no available sessions", msg.Error)

	attempts, err := messages.ListAttempts(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, attempts, "no per-recipient attempts when no session was ever selected")
}

func TestRunCycle_GroupRecipientsGetGroupSuffix(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	seedMessage(t, messages, []string{"120363012345678901"}, domainMessage.RecipientTypeGroup, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	assert.Equal(t, []string{"120363012345678901@g.us"}, driver.sentJIDs())
}

func TestRunCycle_FutureMessageStaysPending(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, []string{"5213312340001"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(time.Hour))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusPending, msg.Status)
	assert.Empty(t, driver.sentJIDs())
}

func TestRunCycle_SwitchesAccountWhenQuotaRunsOut(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 9, 10) // queda 1 envio
	seedAccount(t, accounts, "a2", true, 20, 100)

	d1 := newFakeDriver()
	d2 := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", d1, true)
	registry.add("a2", d2, true)

	id := seedMessage(t, messages, []string{"5213312340001", "5213312340002", "5213312340003"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusSent, msg.Status)

	assert.Len(t, d1.sentJIDs(), 1)
	assert.Len(t, d2.sentJIDs(), 2)

	a1, _ := accounts.GetByID(context.Background(), "a1")
	a2, _ := accounts.GetByID(context.Background(), "a2")
	assert.Equal(t, 10, a1.SentToday)
	assert.Equal(t, 22, a2.SentToday)
}

func TestRunCycle_PanicMarksMessageFailed(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	driver.panicFor["5213312340001@s.whatsapp.net"] = true
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, []string{"5213312340001"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	require.NotPanics(t, func() { queue.RunCycle(context.Background()) })

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusFailed, msg.Status)
	assert.Contains(t, msg.Error, "dispatch panic")
}

func TestRunCycle_SkipsWhileInFlight(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, []string{"5213312340001"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.inFlight.Store(true)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusPending, msg.Status, "an overlapping cycle must not claim anything")

	queue.inFlight.Store(false)
	queue.RunCycle(context.Background())

	msg, err = messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusSent, msg.Status)
}

func TestRunCycle_EmptyRecipientListFails(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, nil, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	queue := newTestQueue(t, accounts, messages, registry)
	queue.RunCycle(context.Background())

	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusFailed, msg.Status)
	assert.Equal(t, "message has no recipients", msg.Error)
}

// brokenQuota entrega siempre pero no logra contar
type brokenQuota struct {
	incErr error
}

func (f *brokenQuota) ResetDailyLimits(ctx context.Context) error { return nil }

func (f *brokenQuota) IncrementOnSuccess(ctx context.Context, accountID string) error {
	return f.incErr
}

func TestRunCycle_QuotaCountFailureDoesNotFailDelivery(t *testing.T) {
	accounts, messages := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	id := seedMessage(t, messages, []string{"5213312340001"}, domainMessage.RecipientTypeContact, time.Now().UTC().Add(-time.Minute))

	selector := NewSessionSelector(accounts, registry)
	quota := &brokenQuota{incErr: errors.New("database is locked")}
	queue := NewDispatchQueue(messages, selector, registry, quota, nil, testDispatchConfig())
	queue.RunCycle(context.Background())

	// El mensaje salio aunque el contador no se pudo mover
	msg, err := messages.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusSent, msg.Status)
	assert.Equal(t, []string{"5213312340001@s.whatsapp.net"}, driver.sentJIDs())
}
