package entity

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrOrderNotPayable       = errors.New("order not payable")
	ErrSessionMismatch       = errors.New("checkout session mismatch")
	ErrEmailRecipientMissing = errors.New("no email recipient configured")
)

// ValidationError is a client-caused input error. Code is the machine-readable
// error code returned in the response body, naming the offending field.
type ValidationError struct {
	Code   string
	Detail string
}

func (e ValidationError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}
