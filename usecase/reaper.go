package usecase

import (
	"context"
	"time"

	"github.com/AzielCF/az-blast/repository"
	"github.com/sirupsen/logrus"
)

// StalledMessageReaper fails messages that sat in the queue well past their
// scheduled time, so operators see a FAILED row instead of a silent stall.
type StalledMessageReaper struct {
	messages     repository.IMessageRepository
	notify       Notifier
	stallTimeout time.Duration
}

func NewStalledMessageReaper(messages repository.IMessageRepository, notify Notifier, stallTimeout time.Duration) *StalledMessageReaper {
	return &StalledMessageReaper{
		messages:     messages,
		notify:       notify,
		stallTimeout: stallTimeout,
	}
}

// Run fails every PENDING or stuck PROCESSING message scheduled before the
// stall cutoff. Scheduled hourly.
func (r *StalledMessageReaper) Run(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.stallTimeout)

	reaped, err := r.messages.FailStalled(ctx, cutoff, "timed out")
	if err != nil {
		logrus.WithError(err).Error("[REAPER] Failed to reap stalled messages")
		return
	}
	if reaped == 0 {
		return
	}

	logrus.Warnf("[REAPER] Failed %d stalled message(s) older than %s", reaped, r.stallTimeout)
	r.notify.publish("MESSAGES_REAPED", "Stalled messages failed", map[string]any{"count": reaped})
}
