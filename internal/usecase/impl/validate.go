package impl

import (
	domainerrors "libris/internal/domain/errors"
	"libris/internal/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput checks an input DTO against its struct tags before any
// network call is made; a failure here has no network side effect.
func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	return nil
}
