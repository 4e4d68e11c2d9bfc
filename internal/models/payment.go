package models

import "time"

// PaymentStatus enumerates payment outcome states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod enumerates the accepted simulated payment methods.
type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodDebitCard    PaymentMethod = "debit_card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodMobileWallet PaymentMethod = "mobile_wallet"
)

// Payment records a simulated payment for a request. At most one payment
// exists per request; the simulation creates it directly in a terminal
// outcome state (completed or failed), and completed payments may later be
// refunded by an admin.
type Payment struct {
	ID            string        `db:"id" json:"id"`
	TransactionID string        `db:"transaction_id" json:"transactionId"`
	RequestID     string        `db:"request_id" json:"requestId"`
	UserID        string        `db:"user_id" json:"userId"`
	Amount        float64       `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaymentDate   *time.Time    `db:"payment_date" json:"paymentDate,omitempty"`
	ReceiptNumber *string       `db:"receipt_number" json:"receiptNumber,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`

	RequestNumber string `db:"request_number" json:"requestNumber,omitempty"`
}

// PaymentFilter captures listing criteria for payments.
type PaymentFilter struct {
	Status   *PaymentStatus
	Method   *PaymentMethod
	Page     int
	PageSize int
}

// PaymentStats aggregates payment totals.
type PaymentStats struct {
	TotalTransactions int     `json:"totalTransactions"`
	TotalRevenue      float64 `json:"totalRevenue"`
	CompletedPayments int     `json:"completedPayments"`
	FailedPayments    int     `json:"failedPayments"`
}
