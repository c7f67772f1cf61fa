package usecase

import (
	"context"
	"testing"
	"time"

	domainAccount "github.com/AzielCF/az-blast/domains/account"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOptimalSession_PicksLeastUsed(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "busy", true, 80, 100)
	seedAccount(t, accounts, "idle", true, 5, 100)
	seedAccount(t, accounts, "mid", true, 40, 100)

	registry := newFakeRegistry()
	for _, id := range []string{"busy", "idle", "mid"} {
		registry.add(id, newFakeDriver(), true)
	}

	selector := NewSessionSelector(accounts, registry)
	acct, err := selector.GetOptimalSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "idle", acct.ID)
}

func TestGetOptimalSession_SkipsAccountsAtQuota(t *testing.T) {
	accounts, _ := newTestRepos(t)
	// La menos usada en terminos absolutos ya agoto su limite
	seedAccount(t, accounts, "capped", true, 10, 10)
	seedAccount(t, accounts, "open", true, 50, 100)

	registry := newFakeRegistry()
	registry.add("capped", newFakeDriver(), true)
	registry.add("open", newFakeDriver(), true)

	selector := NewSessionSelector(accounts, registry)
	acct, err := selector.GetOptimalSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "open", acct.ID)
}

func TestGetOptimalSession_SkipsInactiveAccounts(t *testing.T) {
	accounts, _ := newTestRepos(t)
	now := time.Now().UTC()
	// Pausada por el operador, aunque siga conectada no debe enviar
	require.NoError(t, accounts.Save(context.Background(), domainAccount.Account{
		ID:          "paused",
		PhoneNumber: "5213312340009",
		Name:        "acct-paused",
		IsActive:    false,
		IsConnected: true,
		DailyLimit:  100,
		LastResetAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	registry := newFakeRegistry()
	registry.add("paused", newFakeDriver(), true)

	selector := NewSessionSelector(accounts, registry)
	_, err := selector.GetOptimalSession(context.Background())
	require.Error(t, err)
	var target pkgError.NoAvailableSessionsError
	assert.ErrorAs(t, err, &target)
}

func TestGetOptimalSession_SkipsNotReadySessions(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "stale", true, 0, 100)
	seedAccount(t, accounts, "live", true, 30, 100)

	registry := newFakeRegistry()
	// "stale" sigue marcada como conectada en la base pero la sesion murio
	registry.add("stale", newFakeDriver(), false)
	registry.add("live", newFakeDriver(), true)

	selector := NewSessionSelector(accounts, registry)
	acct, err := selector.GetOptimalSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", acct.ID)
}

func TestGetOptimalSession_NoneAvailable(t *testing.T) {
	accounts, _ := newTestRepos(t)
	seedAccount(t, accounts, "capped", true, 10, 10)

	registry := newFakeRegistry()
	registry.add("capped", newFakeDriver(), true)

	selector := NewSessionSelector(accounts, registry)
	_, err := selector.GetOptimalSession(context.Background())
	require.Error(t, err)
	var target pkgError.NoAvailableSessionsError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "no available sessions", err.Error())
}
