package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidIntention    = errors.New("invalid intention")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrProviderFailure     = errors.New("provider failure")
	ErrVerificationTimeout = errors.New("payment verification timed out")
)

// QuotaError reports a denied reservation together with the numbers the
// client needs to render the denial. It matches ErrQuotaExceeded under
// errors.Is.
type QuotaError struct {
	Limit     int
	Remaining int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: limit %d, remaining %d", e.Limit, e.Remaining)
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
