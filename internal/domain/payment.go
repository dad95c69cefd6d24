package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType represents the role of a payment within a reservation
type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "DEPOSIT"
	PaymentTypeBalance PaymentType = "BALANCE"
	PaymentTypeRefund  PaymentType = "REFUND"
)

// PaymentStatus represents the state of a payment
type PaymentStatus string

const (
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusCaptured   PaymentStatus = "CAPTURED"
	PaymentStatusCanceled   PaymentStatus = "CANCELED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// Payment represents a ledger entry tied to a reservation
// BALANCE and REFUND entries link back to the originating DEPOSIT via RelatedPaymentID
type Payment struct {
	ID               int64
	ReservationID    int64
	PayerUserID      string
	PaymentType      PaymentType
	Status           PaymentStatus
	Method           *string
	Provider         *string
	ProviderTxnID    *string
	Amount           decimal.Decimal
	Currency         string
	RelatedPaymentID *int64
	PaidAt           *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCapturedDeposit returns true if this payment is the captured deposit of its reservation
func (p *Payment) IsCapturedDeposit() bool {
	return p.PaymentType == PaymentTypeDeposit && p.Status == PaymentStatusCaptured
}
