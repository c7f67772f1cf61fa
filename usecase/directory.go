package usecase

import (
	"context"

	domainDirectory "github.com/AzielCF/az-blast/domains/directory"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
)

type directoryService struct {
	registry sessionRegistry
}

func NewDirectoryService(registry sessionRegistry) domainDirectory.IDirectoryUsecase {
	return &directoryService{registry: registry}
}

func (service *directoryService) GetContacts(ctx context.Context, accountID string) ([]domainDirectory.Contact, error) {
	driver, err := service.registry.Driver(accountID)
	if err != nil {
		return nil, err
	}
	if !service.registry.IsReady(accountID) {
		return nil, pkgError.SessionNotReadyError("session is not ready: " + accountID)
	}
	return driver.GetContacts(ctx)
}

func (service *directoryService) GetGroups(ctx context.Context, accountID string) ([]domainDirectory.Group, error) {
	driver, err := service.registry.Driver(accountID)
	if err != nil {
		return nil, err
	}
	if !service.registry.IsReady(accountID) {
		return nil, pkgError.SessionNotReadyError("session is not ready: " + accountID)
	}
	return driver.GetGroups(ctx)
}
