package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotSecretariat = errors.New("user is not a secretariat member")
)

// ValidationError is a business-rule violation detected before any write.
// Handlers render it as a 400 with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%v: %v", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
