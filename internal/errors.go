package storefront

import "errors"

// Sentinel errors for the storefront domain.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
	ErrOutOfStock = errors.New("out of stock")
)

// ValidationError is a client input error whose text is safe to return to
// the caller verbatim. It matches ErrBadRequest under errors.Is.
type ValidationError struct {
	Message string
}

// Invalid returns a ValidationError with the given client-facing message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
