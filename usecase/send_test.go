package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainSend "github.com/AzielCF/az-blast/domains/send"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText_DeliversAndCountsQuota(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	service := NewSendService(registry, accounts, NewQuotaService(accounts), time.Second)
	resp, err := service.SendText(context.Background(), domainSend.TextRequest{
		AccountID:     "a1",
		Recipient:     "5213312340001",
		RecipientType: "CONTACT",
		Message:       "hola",
	})
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Status)
	assert.NotEmpty(t, resp.MessageID)
	assert.Equal(t, []string{"5213312340001@s.whatsapp.net"}, driver.sentJIDs())

	acct, err := accounts.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, acct.SentToday)
}

func TestSendText_SessionNotReady(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	registry := newFakeRegistry()
	registry.add("a1", newFakeDriver(), false)

	service := NewSendService(registry, accounts, NewQuotaService(accounts), time.Second)
	_, err := service.SendText(context.Background(), domainSend.TextRequest{
		AccountID:     "a1",
		Recipient:     "5213312340001",
		RecipientType: "CONTACT",
		Message:       "hola",
	})
	var notReady pkgError.SessionNotReadyError
	require.ErrorAs(t, err, &notReady)
}

func TestSendText_QuotaExceeded(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 10, 10)

	driver := newFakeDriver()
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	service := NewSendService(registry, accounts, NewQuotaService(accounts), time.Second)
	_, err := service.SendText(context.Background(), domainSend.TextRequest{
		AccountID:     "a1",
		Recipient:     "5213312340001",
		RecipientType: "CONTACT",
		Message:       "hola",
	})
	var quotaErr pkgError.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Empty(t, driver.sentJIDs())
}

func TestSendText_UnknownSession(t *testing.T) {
	accounts, _ := newTestRepos(t)
	registry := newFakeRegistry()

	service := NewSendService(registry, accounts, NewQuotaService(accounts), time.Second)
	_, err := service.SendText(context.Background(), domainSend.TextRequest{
		AccountID:     "ghost",
		Recipient:     "5213312340001",
		RecipientType: "CONTACT",
		Message:       "hola",
	})
	var notFound pkgError.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSendText_DriverFailureDoesNotCountQuota(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "a1", true, 0, 100)

	driver := newFakeDriver()
	driver.failFor["5213312340001@s.whatsapp.net"] = errors.New("server rejected message")
	registry := newFakeRegistry()
	registry.add("a1", driver, true)

	service := NewSendService(registry, accounts, NewQuotaService(accounts), time.Second)
	_, err := service.SendText(context.Background(), domainSend.TextRequest{
		AccountID:     "a1",
		Recipient:     "5213312340001",
		RecipientType: "CONTACT",
		Message:       "hola",
	})
	var sendErr pkgError.SendFailureError
	require.ErrorAs(t, err, &sendErr)

	acct, err := accounts.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Zero(t, acct.SentToday)
}

func TestSendText_ValidationRejectsEmptyMessage(t *testing.T) {
	accounts, _ := newTestRepos(t)
	registry := newFakeRegistry()

	service := NewSendService(registry, accounts, NewQuotaService(accounts), time.Second)
	_, err := service.SendText(context.Background(), domainSend.TextRequest{
		AccountID:     "a1",
		Recipient:     "5213312340001",
		RecipientType: "CONTACT",
	})
	var valErr pkgError.ValidationError
	require.ErrorAs(t, err, &valErr)
}
