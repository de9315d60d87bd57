package models

import "time"

// PaymentStatus enumerates admission fee payment states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodStripe       PaymentMethod = "stripe"
)

// Payment records the admission fee attached to an application. Processing
// happens outside this service; only the resulting record is stored.
type Payment struct {
	ID            string        `db:"id" json:"id"`
	ApplicationID string        `db:"application_id" json:"application_id"`
	Amount        float64       `db:"amount" json:"amount"`
	Currency      string        `db:"currency" json:"currency"`
	Status        PaymentStatus `db:"status" json:"status"`
	Method        PaymentMethod `db:"method" json:"method"`
	TransactionID *string       `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
