package usecase

import (
	"context"

	domainAccount "github.com/AzielCF/az-blast/domains/account"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/AzielCF/az-blast/repository"
	"github.com/sirupsen/logrus"
)

type ISessionSelector interface {
	// GetOptimalSession returns the least used connected account that still
	// has daily quota left.
	GetOptimalSession(ctx context.Context) (domainAccount.Account, error)
}

type sessionSelector struct {
	accounts repository.IAccountRepository
	registry sessionRegistry
}

func NewSessionSelector(accounts repository.IAccountRepository, registry sessionRegistry) ISessionSelector {
	return &sessionSelector{accounts: accounts, registry: registry}
}

func (s *sessionSelector) GetOptimalSession(ctx context.Context) (domainAccount.Account, error) {
	eligible, err := s.accounts.ListEligible(ctx)
	if err != nil {
		return domainAccount.Account{}, err
	}

	for _, acct := range eligible {
		// The DB flag can lag behind reality, verify the live session too.
		if !s.registry.IsReady(acct.ID) {
			continue
		}
		if !acct.HasQuota() {
			logrus.Debugf("[SELECTOR] Account %s at quota (%d/%d), skipping", acct.ID, acct.SentToday, acct.DailyLimit)
			continue
		}
		return acct, nil
	}

	return domainAccount.Account{}, pkgError.NoAvailableSessionsError("no available sessions")
}
