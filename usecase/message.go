package usecase

import (
	"context"
	"time"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	"github.com/AzielCF/az-blast/repository"
	"github.com/AzielCF/az-blast/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type messageService struct {
	messages repository.IMessageRepository
}

func NewMessageService(messages repository.IMessageRepository) domainMessage.IMessageUsecase {
	return &messageService{messages: messages}
}

func (service *messageService) Schedule(ctx context.Context, request domainMessage.ScheduleRequest) (domainMessage.ScheduledMessage, error) {
	if err := validations.ValidateScheduleMessage(ctx, request); err != nil {
		return domainMessage.ScheduledMessage{}, err
	}

	now := time.Now().UTC()
	scheduledAt := request.ScheduledAt.UTC()
	if scheduledAt.IsZero() {
		scheduledAt = now
	}

	msg := domainMessage.ScheduledMessage{
		ID:            uuid.NewString(),
		Content:       request.Content,
		Recipients:    request.Recipients,
		RecipientType: request.RecipientType,
		ScheduledAt:   scheduledAt,
		Status:        domainMessage.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := service.messages.Create(ctx, msg); err != nil {
		return domainMessage.ScheduledMessage{}, err
	}

	logrus.Infof("[MESSAGE] Scheduled %s for %s (%d recipient(s))", msg.ID, scheduledAt.Format(time.RFC3339), len(msg.Recipients))
	return msg, nil
}

func (service *messageService) Cancel(ctx context.Context, id string) error {
	err := service.messages.Cancel(ctx, id)
	switch err {
	case nil:
		logrus.Infof("[MESSAGE] Cancelled %s", id)
		return nil
	case repository.ErrMessageNotFound:
		return pkgError.NotFoundError("message not found: " + id)
	case repository.ErrNotCancellable:
		return pkgError.ValidationError("message already left the pending state")
	default:
		return err
	}
}

func (service *messageService) List(ctx context.Context, request domainMessage.ListRequest) ([]domainMessage.ScheduledMessage, error) {
	limit := request.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return service.messages.List(ctx, request.Status, limit)
}

func (service *messageService) GetByID(ctx context.Context, id string) (domainMessage.MessageDetail, error) {
	msg, err := service.messages.GetByID(ctx, id)
	if err == repository.ErrMessageNotFound {
		return domainMessage.MessageDetail{}, pkgError.NotFoundError("message not found: " + id)
	}
	if err != nil {
		return domainMessage.MessageDetail{}, err
	}

	attempts, err := service.messages.ListAttempts(ctx, id)
	if err != nil {
		return domainMessage.MessageDetail{}, err
	}

	return domainMessage.MessageDetail{ScheduledMessage: msg, Attempts: attempts}, nil
}
