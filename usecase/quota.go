package usecase

import (
	"context"
	"time"

	"github.com/AzielCF/az-blast/repository"
	"github.com/sirupsen/logrus"
)

type IQuotaUsecase interface {
	// ResetDailyLimits zeroes the daily counters of accounts not yet reset
	// today. Runs at service start and at midnight UTC, running it twice on
	// the same day is harmless.
	ResetDailyLimits(ctx context.Context) error

	// IncrementOnSuccess counts one delivered recipient against the
	// account's daily quota. This is the only place the counter grows.
	IncrementOnSuccess(ctx context.Context, accountID string) error
}

type quotaService struct {
	accounts repository.IAccountRepository
}

func NewQuotaService(accounts repository.IAccountRepository) IQuotaUsecase {
	return &quotaService{accounts: accounts}
}

func (service *quotaService) ResetDailyLimits(ctx context.Context) error {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	reset, err := service.accounts.ResetDailyCounters(ctx, startOfDay, now)
	if err != nil {
		logrus.WithError(err).Error("[QUOTA] Daily reset failed")
		return err
	}
	if reset > 0 {
		logrus.Infof("[QUOTA] Reset daily counters for %d account(s)", reset)
	}
	return nil
}

func (service *quotaService) IncrementOnSuccess(ctx context.Context, accountID string) error {
	if err := service.accounts.IncrementSentToday(ctx, accountID); err != nil {
		logrus.WithError(err).Errorf("[QUOTA] Failed to increment counter for %s", accountID)
		return err
	}
	return nil
}
