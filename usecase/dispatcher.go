package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	domainAccount "github.com/AzielCF/az-blast/domains/account"
	domainMessage "github.com/AzielCF/az-blast/domains/message"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/AzielCF/az-blast/pkg/jidutils"
	"github.com/AzielCF/az-blast/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DispatchQueue polls for due messages and delivers them one by one through
// the least loaded session. Cycles never overlap.
type DispatchQueue struct {
	messages repository.IMessageRepository
	selector ISessionSelector
	registry sessionRegistry
	quota    IQuotaUsecase
	notify   Notifier
	cfg      coreconfig.DispatchConfig

	// limiter spaces consecutive sends so the traffic does not look like a
	// burst to the remote service.
	limiter *rate.Limiter

	inFlight atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewDispatchQueue(messages repository.IMessageRepository, selector ISessionSelector, registry sessionRegistry, quota IQuotaUsecase, notify Notifier, cfg coreconfig.DispatchConfig) *DispatchQueue {
	return &DispatchQueue{
		messages: messages,
		selector: selector,
		registry: registry,
		quota:    quota,
		notify:   notify,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(cfg.SendDelay), 1),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling loop in a background goroutine.
func (q *DispatchQueue) Start(ctx context.Context) {
	logrus.Infof("[DISPATCH] Queue started, polling every %s (batch size %d)", q.cfg.Interval, q.cfg.BatchSize)
	go func() {
		ticker := time.NewTicker(q.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-q.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				q.RunCycle(ctx)
			}
		}
	}()
}

func (q *DispatchQueue) Stop() {
	q.stopOnce.Do(func() { close(q.stopCh) })
}

// RunCycle claims due messages and processes them sequentially. If the
// previous cycle is still running this one is skipped entirely.
func (q *DispatchQueue) RunCycle(ctx context.Context) {
	if !q.inFlight.CompareAndSwap(false, true) {
		logrus.Debug("[DISPATCH] Previous cycle still in flight, skipping")
		return
	}
	defer q.inFlight.Store(false)

	claimed, err := q.messages.ClaimDue(ctx, time.Now().UTC(), q.cfg.BatchSize)
	if err != nil {
		logrus.WithError(err).Error("[DISPATCH] Failed to claim due messages")
		return
	}
	if len(claimed) == 0 {
		return
	}

	logrus.Infof("[DISPATCH] Claimed %d message(s)", len(claimed))
	for _, msg := range claimed {
		q.processMessage(ctx, msg)
	}
}

// processMessage delivers one message to all its recipients and records the
// terminal status. A panic anywhere inside fails the message instead of
// killing the polling loop.
func (q *DispatchQueue) processMessage(ctx context.Context, msg domainMessage.ScheduledMessage) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("dispatch panic: %v", r)
			logrus.Errorf("[DISPATCH] Panic while processing %s: %v", msg.ID, r)
			if err := q.messages.MarkFailed(context.Background(), msg.ID, "", reason); err != nil {
				logrus.WithError(err).Errorf("[DISPATCH] Failed to mark %s after panic", msg.ID)
			}
		}
	}()

	total := len(msg.Recipients)
	if total == 0 {
		q.finish(ctx, msg, "", 0, 0, "message has no recipients")
		return
	}

	acct, err := q.selector.GetOptimalSession(ctx)
	if err != nil {
		// No retry here: the message fails now and the operator decides.
		logrus.Warnf("[DISPATCH] No session for message %s: %v", msg.ID, err)
		q.finish(ctx, msg, "", 0, total, "no available sessions")
		return
	}

	driver, err := q.registry.Driver(acct.ID)
	if err != nil {
		q.finish(ctx, msg, "", 0, total, "no available sessions")
		return
	}

	quotaLeft := acct.DailyLimit - acct.SentToday
	successes := 0
	firstErr := ""

	for _, recipient := range msg.Recipients {
		// The chosen account can hit its cap mid-message, hand the rest of
		// the recipients to the next least used session.
		if quotaLeft <= 0 {
			acct, driver, quotaLeft, err = q.reselect(ctx)
			if err != nil {
				q.recordAttempt(ctx, msg.ID, recipient, false, "no available sessions")
				if firstErr == "" {
					firstErr = "no available sessions"
				}
				continue
			}
		}

		if err := q.limiter.Wait(ctx); err != nil {
			q.recordAttempt(ctx, msg.ID, recipient, false, err.Error())
			if firstErr == "" {
				firstErr = err.Error()
			}
			continue
		}

		jid := jidutils.ResolveRecipient(recipient, string(msg.RecipientType))
		sendCtx, cancel := context.WithTimeout(ctx, q.cfg.SendTimeout)
		_, sendErr := driver.SendText(sendCtx, jid, msg.Content)
		cancel()

		if sendErr != nil {
			logrus.WithError(sendErr).Warnf("[DISPATCH] Send to %s failed for message %s", jid, msg.ID)
			q.recordAttempt(ctx, msg.ID, recipient, false, sendErr.Error())
			if firstErr == "" {
				firstErr = sendErr.Error()
			}
			continue
		}

		successes++
		quotaLeft--
		q.recordAttempt(ctx, msg.ID, recipient, true, "")
		// On increment failure the persisted counter lags behind quotaLeft.
		if err := q.quota.IncrementOnSuccess(ctx, acct.ID); err != nil {
			logrus.WithError(err).Errorf("[DISPATCH] Failed to count delivery to %s for message %s", recipient, msg.ID)
		}
	}

	q.finish(ctx, msg, acct.ID, successes, total-successes, firstErr)
}

func (q *DispatchQueue) reselect(ctx context.Context) (domainAccount.Account, domainSession.Driver, int, error) {
	acct, err := q.selector.GetOptimalSession(ctx)
	if err != nil {
		return domainAccount.Account{}, nil, 0, err
	}
	driver, err := q.registry.Driver(acct.ID)
	if err != nil {
		return domainAccount.Account{}, nil, 0, err
	}
	logrus.Infof("[DISPATCH] Switched to account %s mid-message", acct.ID)
	return acct, driver, acct.DailyLimit - acct.SentToday, nil
}

func (q *DispatchQueue) recordAttempt(ctx context.Context, messageID, recipient string, success bool, errMsg string) {
	attempt := domainMessage.DeliveryAttempt{
		MessageID: messageID,
		Recipient: recipient,
		Success:   success,
		Error:     errMsg,
		CreatedAt: time.Now().UTC(),
	}
	if err := q.messages.CreateAttempt(ctx, attempt); err != nil {
		logrus.WithError(err).Errorf("[DISPATCH] Failed to record attempt for %s", messageID)
	}
}

// finish classifies the outcome and persists the terminal status.
func (q *DispatchQueue) finish(ctx context.Context, msg domainMessage.ScheduledMessage, accountID string, successes, failures int, firstErr string) {
	now := time.Now().UTC()
	var status domainMessage.Status
	var err error

	switch {
	case failures == 0 && successes > 0:
		status = domainMessage.StatusSent
		err = q.messages.MarkSent(ctx, msg.ID, accountID, now)
	case successes == 0:
		status = domainMessage.StatusFailed
		if firstErr == "" {
			firstErr = "delivery failed"
		}
		err = q.messages.MarkFailed(ctx, msg.ID, accountID, firstErr)
	default:
		status = domainMessage.StatusPartial
		reason := fmt.Sprintf("partial failure: %d of %d", failures, successes+failures)
		err = q.messages.MarkPartial(ctx, msg.ID, accountID, reason, now)
	}
	if err != nil {
		logrus.WithError(err).Errorf("[DISPATCH] Failed to persist outcome for %s", msg.ID)
		return
	}

	logrus.Infof("[DISPATCH] Message %s finished as %s (%d ok, %d failed)", msg.ID, status, successes, failures)
	q.notify.publish("MESSAGE_DISPATCHED", "Message processed", map[string]any{
		"message_id": msg.ID,
		"status":     status,
		"successes":  successes,
		"failures":   failures,
	})
}
