package validations

import (
	"context"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateScheduleMessage(ctx context.Context, request domainMessage.ScheduleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Content, validation.Required),
		validation.Field(&request.Recipients, validation.Required, validation.Length(1, 0)),
		validation.Field(&request.RecipientType, validation.Required, validation.In(
			domainMessage.RecipientTypeContact,
			domainMessage.RecipientTypeGroup,
			domainMessage.RecipientTypeBroadcast,
		)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
