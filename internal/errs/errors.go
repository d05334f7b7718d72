package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid")
	// ErrInvalidAmount flags a non-positive or malformed amount.
	ErrInvalidAmount = errors.New("invalid_amount")
)
