package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

// validationFailure converts validator errors into a field-carrying
// validation error.
func validationFailure(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag()))
		}
		return appErrors.WithFields(appErrors.ErrValidation, fields)
	}
	return appErrors.ErrValidation
}

// notFoundOr maps sql.ErrNoRows to the domain NotFound error and wraps
// anything else as internal.
func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}
