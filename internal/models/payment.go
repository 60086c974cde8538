package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a ledger entry against a client and optionally one of its flights
type Payment struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"-"`
	ClientID  string          `json:"clientId"`
	FlightID  string          `json:"flightId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    PaymentMethod   `json:"method"`
	Status    PaymentStatus   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// After reports whether p is more recent than other
func (p *Payment) After(other *Payment) bool {
	if !p.Date.Equal(other.Date) {
		return p.Date.After(other.Date)
	}
	return p.CreatedAt.After(other.CreatedAt)
}

type PaymentStatus string

const (
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusUnpaid      PaymentStatus = "unpaid"
	PaymentStatusFreeService PaymentStatus = "free"
)

// Recordable reports whether s may be stored on a payment. Free service is derived only.
func (s PaymentStatus) Recordable() bool {
	return s == PaymentStatusPaid || s == PaymentStatusUnpaid
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOther:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", raw)
}
