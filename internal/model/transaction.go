package model

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCredit PaymentMethod = "CREDIT"
	PaymentDebit  PaymentMethod = "DEBIT"
	PaymentPix    PaymentMethod = "PIX"
)

// Transaction is an entry in the append-only payment ledger.
type Transaction struct {
	ID            string          `json:"id"`
	TableID       int             `json:"tableId"`
	ComandaID     string          `json:"comandaId"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Change        decimal.Decimal `json:"change"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	ItemsCount    int             `json:"itemsCount"`
	Timestamp     int64           `json:"timestamp"`
	CustomerID    string          `json:"customerId,omitempty"`
}
