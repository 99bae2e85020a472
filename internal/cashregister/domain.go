// Package cashregister manages till sessions: opening amounts, transaction
// postings and the closing reconciliation report.
package cashregister

import (
	"time"

	"github.com/shopspring/decimal"
)

// OriginType classifies a till posting.
type OriginType string

const (
	OriginPayment   OriginType = "PAYMENT"
	OriginExpense   OriginType = "EXPENSE"
	OriginIncrement OriginType = "INCREMENT"
)

// Register is a till session. ClosedAt nil means the session is open, and an
// owner has at most one open session at a time.
type Register struct {
	ID                 string                     `json:"id"`
	OwnerID            string                     `json:"-"`
	OpenedAmount       decimal.Decimal            `json:"openedAmount"`
	ExpectedAmount     decimal.Decimal            `json:"expectedAmount"`
	ClosedAmount       *decimal.Decimal           `json:"closedAmount,omitempty"`
	RegisteredPayments map[string]decimal.Decimal `json:"registeredPayments"`
	OpenedAt           time.Time                  `json:"openedAt"`
	ClosedAt           *time.Time                 `json:"closedAt,omitempty"`
}

// Open reports whether the session still accepts postings.
func (r Register) Open() bool {
	return r.ClosedAt == nil
}

// Transaction is an append-only posting against a register.
type Transaction struct {
	ID            string          `json:"id"`
	RegisterID    string          `json:"cashRegisterId"`
	OriginType    OriginType      `json:"originType"`
	OriginID      *string         `json:"originId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Reason        *string         `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Report is the reconciliation view of one register.
type Report struct {
	OpenedAmount   decimal.Decimal  `json:"openedAmount"`
	ExpectedAmount decimal.Decimal  `json:"expectedAmount"`
	ClosedAmount   *decimal.Decimal `json:"closedAmount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Totals         ReportTotals     `json:"totals"`
}

// ReportTotals sums postings per origin type.
type ReportTotals struct {
	Orders     decimal.Decimal `json:"orders"`
	Expenses   decimal.Decimal `json:"expenses"`
	Increments decimal.Decimal `json:"increments"`
}

// Sale groups the PAYMENT postings of one order for the sales view.
type Sale struct {
	OrderID    string          `json:"orderId"`
	ClientName string          `json:"clientName"`
	CreatedAt  time.Time       `json:"createdAt"`
	Payments   []SalePayment   `json:"payments"`
	Total      decimal.Decimal `json:"total"`
}

// SalePayment is one payment inside a sales row.
type SalePayment struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// PaymentPosting carries the payment fields the settlement flow posts to the
// till at order close.
type PaymentPosting struct {
	PaymentID string
	Amount    decimal.Decimal
	Method    string
}
