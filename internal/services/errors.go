package services

import (
	"errors"
	"fmt"
)

// Service-level failures handlers translate into HTTP statuses. Anything not
// matching one of these is treated as an internal error and never leaked to
// the caller.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError carries a caller-facing message about a missing or
// malformed field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
