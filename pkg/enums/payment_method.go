package enums

import "fmt"

// PaymentMethod describes how a retailer settled an order.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodUPI,
	PaymentMethodBankTransfer,
	PaymentMethodCheque,
}

// IsValid reports whether the value matches the canonical payment method enum.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts the raw string to PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
