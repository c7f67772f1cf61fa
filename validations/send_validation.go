package validations

import (
	"context"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
	domainSend "github.com/AzielCF/az-blast/domains/send"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var recipientTypeRule = validation.In(
	domainMessage.RecipientTypeContact,
	domainMessage.RecipientTypeGroup,
	domainMessage.RecipientTypeBroadcast,
)

func ValidateSendText(ctx context.Context, request domainSend.TextRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.AccountID, validation.Required),
		validation.Field(&request.Recipient, validation.Required),
		validation.Field(&request.RecipientType, validation.Required, recipientTypeRule),
		validation.Field(&request.Message, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSendImage(ctx context.Context, request domainSend.ImageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.AccountID, validation.Required),
		validation.Field(&request.Recipient, validation.Required),
		validation.Field(&request.RecipientType, validation.Required, recipientTypeRule),
		validation.Field(&request.ImageURL, validation.Required, is.URL),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSendDocument(ctx context.Context, request domainSend.DocumentRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.AccountID, validation.Required),
		validation.Field(&request.Recipient, validation.Required),
		validation.Field(&request.RecipientType, validation.Required, recipientTypeRule),
		validation.Field(&request.DocumentURL, validation.Required, is.URL),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
