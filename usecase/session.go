package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	domainAccount "github.com/AzielCF/az-blast/domains/account"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/AzielCF/az-blast/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// sessionRegistry is the slice of the session service the dispatcher and the
// direct-send path need.
type sessionRegistry interface {
	IsReady(accountID string) bool
	Driver(accountID string) (domainSession.Driver, error)
}

type managedSession struct {
	accountID string
	name      string
	driver    domainSession.Driver

	mu           sync.RWMutex
	state        domainSession.State
	qrCode       string
	restartCount int
	reason       string

	done     chan struct{}
	doneOnce sync.Once
}

func (ms *managedSession) snapshot() (domainSession.State, string, int, string) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.state, ms.qrCode, ms.restartCount, ms.reason
}

func (ms *managedSession) setState(state domainSession.State) {
	ms.mu.Lock()
	ms.state = state
	ms.mu.Unlock()
}

type sessionService struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession

	accounts repository.IAccountRepository
	factory  domainSession.DriverFactory
	notify   Notifier
	cfg      coreconfig.SessionConfig

	defaultDailyLimit int
}

func NewSessionService(accounts repository.IAccountRepository, factory domainSession.DriverFactory, notify Notifier, cfg coreconfig.SessionConfig, defaultDailyLimit int) *sessionService {
	return &sessionService{
		sessions:          make(map[string]*managedSession),
		accounts:          accounts,
		factory:           factory,
		notify:            notify,
		cfg:               cfg,
		defaultDailyLimit: defaultDailyLimit,
	}
}

// Create registers and starts a session for the account. Calling it again
// for a live session is a no-op that returns the current status.
func (service *sessionService) Create(ctx context.Context, request domainSession.CreateRequest) (domainSession.Status, error) {
	accountID := request.AccountID
	if accountID == "" {
		accountID = uuid.NewString()
	}

	service.mu.RLock()
	existing, ok := service.sessions[accountID]
	service.mu.RUnlock()
	if ok {
		logrus.Infof("[SESSION] Create called for live session %s, returning current status", accountID)
		return service.statusFor(ctx, existing), nil
	}

	// Account lookup runs outside the registry lock so a slow database
	// never stalls GetStatus/List/IsReady.
	acct, err := service.accounts.GetByID(ctx, accountID)
	if err == repository.ErrAccountNotFound {
		now := time.Now().UTC()
		limit := request.DailyLimit
		if limit <= 0 {
			limit = service.defaultDailyLimit
		}
		acct = domainAccount.Account{
			ID:          accountID,
			PhoneNumber: request.PhoneNumber,
			Name:        request.Name,
			IsActive:    true,
			DailyLimit:  limit,
			LastResetAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := service.accounts.Save(ctx, acct); err != nil {
			return domainSession.Status{}, err
		}
	} else if err != nil {
		return domainSession.Status{}, err
	}

	service.mu.Lock()
	if existing, ok := service.sessions[accountID]; ok {
		// A concurrent Create won the race during the account lookup.
		service.mu.Unlock()
		return service.statusFor(ctx, existing), nil
	}
	ms := &managedSession{
		accountID: accountID,
		name:      acct.Name,
		driver:    service.factory(accountID),
		state:     domainSession.StateInitializing,
		done:      make(chan struct{}),
	}
	service.sessions[accountID] = ms
	service.mu.Unlock()

	logrus.Infof("[SESSION] Starting session for account %s", accountID)

	// All transitions happen in this single consumer goroutine.
	go service.consumeEvents(ms)

	go func() {
		if err := ms.driver.Start(context.Background()); err != nil {
			logrus.WithError(err).Errorf("[SESSION] Initial start failed for %s", accountID)
			service.onDisconnected(ms, err.Error())
		}
	}()

	return service.statusFor(ctx, ms), nil
}

func (service *sessionService) Destroy(ctx context.Context, accountID string) error {
	service.mu.Lock()
	ms, ok := service.sessions[accountID]
	if !ok {
		service.mu.Unlock()
		return pkgError.SessionNotFoundError("session not found: " + accountID)
	}
	delete(service.sessions, accountID)
	service.mu.Unlock()

	ms.setState(domainSession.StateDestroyed)
	ms.doneOnce.Do(func() { close(ms.done) })

	if err := ms.driver.Stop(ctx); err != nil {
		logrus.WithError(err).Warnf("[SESSION] Driver stop failed for %s", accountID)
	}
	if err := service.accounts.SetConnected(ctx, accountID, false, ""); err != nil {
		logrus.WithError(err).Errorf("[SESSION] Failed to persist disconnect for %s", accountID)
	}

	logrus.Infof("[SESSION] Destroyed session %s", accountID)
	service.notify.publish("SESSION_DESTROYED", "Session destroyed", map[string]string{"account_id": accountID})
	return nil
}

func (service *sessionService) GetStatus(ctx context.Context, accountID string) (domainSession.Status, error) {
	service.mu.RLock()
	ms, ok := service.sessions[accountID]
	service.mu.RUnlock()
	if !ok {
		return domainSession.Status{}, pkgError.SessionNotFoundError("session not found: " + accountID)
	}
	return service.statusFor(ctx, ms), nil
}

func (service *sessionService) List(ctx context.Context) ([]domainSession.Status, error) {
	service.mu.RLock()
	all := make([]*managedSession, 0, len(service.sessions))
	for _, ms := range service.sessions {
		all = append(all, ms)
	}
	service.mu.RUnlock()

	res := make([]domainSession.Status, len(all))
	for i, ms := range all {
		res[i] = service.statusFor(ctx, ms)
	}
	return res, nil
}

func (service *sessionService) IsReady(accountID string) bool {
	service.mu.RLock()
	ms, ok := service.sessions[accountID]
	service.mu.RUnlock()
	if !ok {
		return false
	}
	state, _, _, _ := ms.snapshot()
	return state == domainSession.StateReady && ms.driver.IsConnected() && ms.driver.IsLoggedIn()
}

// Driver exposes the underlying driver for the dispatch and direct-send
// paths. Callers must check IsReady first.
func (service *sessionService) Driver(accountID string) (domainSession.Driver, error) {
	service.mu.RLock()
	ms, ok := service.sessions[accountID]
	service.mu.RUnlock()
	if !ok {
		return nil, pkgError.SessionNotFoundError("session not found: " + accountID)
	}
	return ms.driver, nil
}

// RestoreAll recreates sessions for every active account that has a stored
// device snapshot. Called once at boot.
func (service *sessionService) RestoreAll(ctx context.Context) {
	accounts, err := service.accounts.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("[SESSION] Failed to list accounts for restore")
		return
	}

	restored := 0
	for _, acct := range accounts {
		if !acct.IsActive || acct.SessionData == "" {
			continue
		}
		if _, err := service.Create(ctx, domainSession.CreateRequest{AccountID: acct.ID}); err != nil {
			logrus.WithError(err).Errorf("[SESSION] Failed to restore session %s", acct.ID)
			continue
		}
		restored++
	}
	if restored > 0 {
		logrus.Infof("[SESSION] Restored %d session(s) from storage", restored)
	}
}

func (service *sessionService) statusFor(ctx context.Context, ms *managedSession) domainSession.Status {
	state, qr, restarts, reason := ms.snapshot()
	status := domainSession.Status{
		AccountID:    ms.accountID,
		Name:         ms.name,
		State:        state,
		Connected:    state == domainSession.StateReady,
		QRCode:       qr,
		RestartCount: restarts,
		Reason:       reason,
	}
	if acct, err := service.accounts.GetByID(ctx, ms.accountID); err == nil {
		status.Name = acct.Name
		status.SentToday = acct.SentToday
		status.DailyLimit = acct.DailyLimit
	}
	return status
}

// consumeEvents is the per-session state machine. It is the only writer of
// session state once the session is live.
func (service *sessionService) consumeEvents(ms *managedSession) {
	for evt := range ms.driver.Events() {
		switch evt.Type {
		case domainSession.EventQR:
			ms.mu.Lock()
			ms.state = domainSession.StateAwaitingScan
			ms.qrCode = evt.Code
			ms.reason = ""
			ms.mu.Unlock()

			logrus.Infof("[SESSION] QR code received for %s", ms.accountID)
			service.notify.publish("QR_CODE", "Scan to authenticate", map[string]string{
				"account_id": ms.accountID,
				"qr_code":    evt.Code,
			})

		case domainSession.EventReady:
			ms.mu.Lock()
			ms.state = domainSession.StateReady
			ms.qrCode = ""
			ms.restartCount = 0
			ms.reason = ""
			ms.mu.Unlock()

			snapshot, _ := json.Marshal(map[string]string{"jid": ms.driver.DeviceJID()})
			if err := service.accounts.SetConnected(context.Background(), ms.accountID, true, string(snapshot)); err != nil {
				logrus.WithError(err).Errorf("[SESSION] Failed to persist connect for %s", ms.accountID)
			}

			logrus.Infof("[SESSION] Session %s is ready", ms.accountID)
			service.notify.publish("SESSION_READY", "Session connected", map[string]string{"account_id": ms.accountID})

		case domainSession.EventDisconnected:
			service.onDisconnected(ms, evt.Reason)

		case domainSession.EventAuthFailure:
			ms.mu.Lock()
			ms.state = domainSession.StateAuthFailed
			ms.qrCode = ""
			ms.reason = evt.Reason
			ms.mu.Unlock()

			// Auth failures are terminal: drop the stored device snapshot
			// so the account is not restored on the next boot.
			if err := service.accounts.ClearSessionData(context.Background(), ms.accountID); err != nil {
				logrus.WithError(err).Errorf("[SESSION] Failed to persist auth failure for %s", ms.accountID)
			}

			logrus.Warnf("[SESSION] Auth failure for %s: %s", ms.accountID, evt.Reason)
			service.notify.publish("AUTH_FAILURE", evt.Reason, map[string]string{"account_id": ms.accountID})
		}
	}
}

func (service *sessionService) onDisconnected(ms *managedSession, reason string) {
	ms.mu.Lock()
	if ms.state == domainSession.StateDestroyed || ms.state == domainSession.StateAuthFailed {
		ms.mu.Unlock()
		return
	}
	ms.state = domainSession.StateDisconnected
	ms.reason = reason
	ms.mu.Unlock()

	if err := service.accounts.SetConnected(context.Background(), ms.accountID, false, ""); err != nil {
		logrus.WithError(err).Errorf("[SESSION] Failed to persist disconnect for %s", ms.accountID)
	}

	logrus.Warnf("[SESSION] Session %s disconnected: %s", ms.accountID, reason)
	service.notify.publish("SESSION_DISCONNECTED", reason, map[string]string{"account_id": ms.accountID})

	go service.scheduleRestart(ms)
}

// scheduleRestart retries the connection with capped exponential backoff.
// After the configured attempt budget the session lands in a terminal state
// waiting for a manual re-scan.
func (service *sessionService) scheduleRestart(ms *managedSession) {
	ms.mu.Lock()
	ms.restartCount++
	attempt := ms.restartCount
	ms.mu.Unlock()

	if attempt > service.cfg.ReconnectMaxAttempts {
		ms.mu.Lock()
		ms.state = domainSession.StateAuthFailed
		ms.reason = "needs re-authentication"
		ms.mu.Unlock()

		// Terminal like an auth failure: only a manual re-scan brings the
		// account back, so the snapshot must not survive to the next boot.
		if err := service.accounts.ClearSessionData(context.Background(), ms.accountID); err != nil {
			logrus.WithError(err).Errorf("[SESSION] Failed to clear snapshot for %s", ms.accountID)
		}

		logrus.Errorf("[SESSION] Session %s exhausted %d reconnect attempts, giving up", ms.accountID, service.cfg.ReconnectMaxAttempts)
		service.notify.publish("AUTH_FAILURE", "needs re-authentication", map[string]string{"account_id": ms.accountID})
		return
	}

	delay := service.cfg.ReconnectBaseDelay << (attempt - 1)
	if delay > service.cfg.ReconnectMaxDelay {
		delay = service.cfg.ReconnectMaxDelay
	}

	logrus.Infof("[SESSION] Restarting %s in %s (attempt %d/%d)", ms.accountID, delay, attempt, service.cfg.ReconnectMaxAttempts)

	select {
	case <-time.After(delay):
	case <-ms.done:
		return
	}

	state, _, _, _ := ms.snapshot()
	if state != domainSession.StateDisconnected {
		return
	}

	if err := ms.driver.Start(context.Background()); err != nil {
		logrus.WithError(err).Warnf("[SESSION] Restart attempt %d failed for %s", attempt, ms.accountID)
		service.scheduleRestart(ms)
	}
}
