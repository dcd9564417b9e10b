package enums

import "fmt"

// PaymentStatus tracks the escrow-like payment lock lifecycle.
type PaymentStatus string

const (
	PaymentStatusLocked   PaymentStatus = "locked"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusDisputed PaymentStatus = "disputed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusLocked,
	PaymentStatusReleased,
	PaymentStatusDisputed,
	PaymentStatusRefunded,
}

// IsValid reports whether the value matches the canonical payment status enum.
func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the payment has been paid out; terminal payments
// never transition again.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusReleased || s == PaymentStatusRefunded
}

// ParsePaymentStatus converts the raw string to PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
