package validations

import (
	"context"

	domainSession "github.com/AzielCF/az-blast/domains/session"
	pkgError "github.com/AzielCF/az-blast/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateCreateSession(ctx context.Context, request domainSession.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		// Re-creating an existing session only needs the account id
		validation.Field(&request.Name, validation.Required.When(request.AccountID == "")),
		validation.Field(&request.DailyLimit, validation.Min(0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
