package usecase

import (
	"context"
	"time"

	domainSend "github.com/AzielCF/az-blast/domains/send"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/AzielCF/az-blast/pkg/jidutils"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/AzielCF/az-blast/repository"
	"github.com/AzielCF/az-blast/validations"
	"github.com/sirupsen/logrus"
)

// sendService is the direct-send path: it targets one explicit session
// instead of going through the selector, but still honors its quota.
type sendService struct {
	registry    sessionRegistry
	accounts    repository.IAccountRepository
	quota       IQuotaUsecase
	sendTimeout time.Duration
}

func NewSendService(registry sessionRegistry, accounts repository.IAccountRepository, quota IQuotaUsecase, sendTimeout time.Duration) domainSend.ISendUsecase {
	return &sendService{
		registry:    registry,
		accounts:    accounts,
		quota:       quota,
		sendTimeout: sendTimeout,
	}
}

func (service *sendService) SendText(ctx context.Context, request domainSend.TextRequest) (domainSend.GenericResponse, error) {
	if err := validations.ValidateSendText(ctx, request); err != nil {
		return domainSend.GenericResponse{}, err
	}

	driver, err := service.acquire(ctx, request.AccountID)
	if err != nil {
		return domainSend.GenericResponse{}, err
	}

	jid := jidutils.ResolveRecipient(request.Recipient, string(request.RecipientType))
	resp, err := service.doSend(ctx, request.AccountID, func(sendCtx context.Context) (domainSession.SendResponse, error) {
		return driver.SendText(sendCtx, jid, request.Message)
	})
	if err != nil {
		return domainSend.GenericResponse{}, err
	}
	return domainSend.GenericResponse{MessageID: resp.MessageID, Status: "sent"}, nil
}

func (service *sendService) SendImage(ctx context.Context, request domainSend.ImageRequest) (domainSend.GenericResponse, error) {
	if err := validations.ValidateSendImage(ctx, request); err != nil {
		return domainSend.GenericResponse{}, err
	}

	driver, err := service.acquire(ctx, request.AccountID)
	if err != nil {
		return domainSend.GenericResponse{}, err
	}

	jid := jidutils.ResolveRecipient(request.Recipient, string(request.RecipientType))
	resp, err := service.doSend(ctx, request.AccountID, func(sendCtx context.Context) (domainSession.SendResponse, error) {
		return driver.SendImage(sendCtx, jid, request.ImageURL, request.Caption)
	})
	if err != nil {
		return domainSend.GenericResponse{}, err
	}
	return domainSend.GenericResponse{MessageID: resp.MessageID, Status: "sent"}, nil
}

func (service *sendService) SendDocument(ctx context.Context, request domainSend.DocumentRequest) (domainSend.GenericResponse, error) {
	if err := validations.ValidateSendDocument(ctx, request); err != nil {
		return domainSend.GenericResponse{}, err
	}

	driver, err := service.acquire(ctx, request.AccountID)
	if err != nil {
		return domainSend.GenericResponse{}, err
	}

	jid := jidutils.ResolveRecipient(request.Recipient, string(request.RecipientType))
	resp, err := service.doSend(ctx, request.AccountID, func(sendCtx context.Context) (domainSession.SendResponse, error) {
		return driver.SendDocument(sendCtx, jid, request.DocumentURL, request.FileName)
	})
	if err != nil {
		return domainSend.GenericResponse{}, err
	}
	return domainSend.GenericResponse{MessageID: resp.MessageID, Status: "sent"}, nil
}

// acquire verifies the session is ready and under quota before handing back
// its driver.
func (service *sendService) acquire(ctx context.Context, accountID string) (domainSession.Driver, error) {
	driver, err := service.registry.Driver(accountID)
	if err != nil {
		return nil, err
	}
	if !service.registry.IsReady(accountID) {
		return nil, pkgError.SessionNotReadyError("session is not ready: " + accountID)
	}

	acct, err := service.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasQuota() {
		return nil, pkgError.QuotaExceededError("daily limit reached for account " + accountID)
	}
	return driver, nil
}

func (service *sendService) doSend(ctx context.Context, accountID string, send func(context.Context) (domainSession.SendResponse, error)) (domainSession.SendResponse, error) {
	sendCtx, cancel := context.WithTimeout(ctx, service.sendTimeout)
	defer cancel()

	resp, err := send(sendCtx)
	if err != nil {
		logrus.WithError(err).Warnf("[SEND] Direct send failed via %s", accountID)
		return domainSession.SendResponse{}, pkgError.SendFailureError(err.Error())
	}

	_ = service.quota.IncrementOnSuccess(ctx, accountID)
	return resp, nil
}
