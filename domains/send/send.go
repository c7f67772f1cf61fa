package send

import (
	"context"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
)

type TextRequest struct {
	AccountID     string                      `json:"account_id" uri:"account_id"`
	Recipient     string                      `json:"recipient" form:"recipient"`
	RecipientType domainMessage.RecipientType `json:"recipient_type" form:"recipient_type"`
	Message       string                      `json:"message" form:"message"`
}

type ImageRequest struct {
	AccountID     string                      `json:"account_id" uri:"account_id"`
	Recipient     string                      `json:"recipient" form:"recipient"`
	RecipientType domainMessage.RecipientType `json:"recipient_type" form:"recipient_type"`
	ImageURL      string                      `json:"image_url" form:"image_url"`
	Caption       string                      `json:"caption" form:"caption"`
}

type DocumentRequest struct {
	AccountID     string                      `json:"account_id" uri:"account_id"`
	Recipient     string                      `json:"recipient" form:"recipient"`
	RecipientType domainMessage.RecipientType `json:"recipient_type" form:"recipient_type"`
	DocumentURL   string                      `json:"document_url" form:"document_url"`
	FileName      string                      `json:"file_name" form:"file_name"`
}

type GenericResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type ISendUsecase interface {
	SendText(ctx context.Context, request TextRequest) (GenericResponse, error)
	SendImage(ctx context.Context, request ImageRequest) (GenericResponse, error)
	SendDocument(ctx context.Context, request DocumentRequest) (GenericResponse, error)
}
