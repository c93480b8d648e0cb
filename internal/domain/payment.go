package domain

import "time"

// PaymentStatus is the state of an external checkout session. Transitions
// are monotonic: pending moves to exactly one terminal status and never
// back.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentExpired PaymentStatus = "expired"
	PaymentFailed  PaymentStatus = "failed"
)

// Terminal reports whether no further transition can occur.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentPaid, PaymentExpired, PaymentFailed:
		return true
	}
	return false
}

// PaymentSession mirrors a processor checkout session owned by one user. The
// ID is the processor's session identifier.
type PaymentSession struct {
	ID        string
	UserID    string
	Status    PaymentStatus
	ReturnURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
