package enums

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentMethod identifies how a buyer settles an order. Codes are part of
// the wire contract shared with the query materializer and must not change.
type PaymentMethod int64

const (
	PaymentMethodUnknown  PaymentMethod = 0
	PaymentMethodCash     PaymentMethod = 1
	PaymentMethodCredit   PaymentMethod = 2
	PaymentMethodDebit    PaymentMethod = 3
	PaymentMethodTransfer PaymentMethod = 4
	PaymentMethodWallet   PaymentMethod = 5
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentMethodUnknown:  "Unknown",
	PaymentMethodCash:     "Efectivo",
	PaymentMethodCredit:   "TDC",
	PaymentMethodDebit:    "TDD",
	PaymentMethodTransfer: "Transferencia",
	PaymentMethodWallet:   "Wallet",
}

// chargeableMethods is the subset accepted by the charge path. Transfer and
// wallet exist in the catalog but settle out of band.
var chargeableMethods = map[PaymentMethod]bool{
	PaymentMethodCash:   true,
	PaymentMethodCredit: true,
	PaymentMethodDebit:  true,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	if name, ok := paymentMethodNames[p]; ok {
		return name
	}
	return paymentMethodNames[PaymentMethodUnknown]
}

// IsValid reports whether the code names a known method other than Unknown.
func (p PaymentMethod) IsValid() bool {
	_, ok := paymentMethodNames[p]
	return ok && p != PaymentMethodUnknown
}

// IsChargeable reports whether the charge path accepts the method.
func (p PaymentMethod) IsChargeable() bool {
	return chargeableMethods[p]
}

// ParsePaymentMethodCode validates a numeric code.
func ParsePaymentMethodCode(code int64) (PaymentMethod, error) {
	method := PaymentMethod(code)
	if !method.IsValid() {
		return PaymentMethodUnknown, fmt.Errorf("invalid payment method code %d", code)
	}
	return method, nil
}

var paymentMethodAliases = map[string]PaymentMethod{
	"efectivo":      PaymentMethodCash,
	"cash":          PaymentMethodCash,
	"tdc":           PaymentMethodCredit,
	"credito":       PaymentMethodCredit,
	"tdd":           PaymentMethodDebit,
	"debito":        PaymentMethodDebit,
	"transferencia": PaymentMethodTransfer,
	"transfer":      PaymentMethodTransfer,
	"wallet":        PaymentMethodWallet,
}

// MapPaymentMethodText resolves free text from inbound events into a code.
// Numeric strings map by code, known names map by alias, anything else maps
// to Unknown. It never fails: the materializer records what it received.
func MapPaymentMethodText(value string) PaymentMethod {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PaymentMethodUnknown
	}
	if code, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if method := PaymentMethod(code); method.IsValid() {
			return method
		}
		return PaymentMethodUnknown
	}
	if method, ok := paymentMethodAliases[strings.ToLower(trimmed)]; ok {
		return method
	}
	return PaymentMethodUnknown
}
