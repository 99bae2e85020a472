// Package payments records payments against orders and drives order status
// from the paid balance.
package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/comanda/internal/orders"
)

// Method of payment.
type Method string

const (
	MethodCash Method = "CASH"
	MethodCard Method = "CARD"
	MethodPix  Method = "PIX"
)

// Status of a payment.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Payment is one amount received against an order, optionally scoped to a
// split-bill sub-client.
type Payment struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        Method          `json:"method"`
	Status        Status          `json:"status"`
	OrderClientID *string         `json:"orderClientId,omitempty"`
	Note          *string         `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// OrderSummary is the slice of an order the ledger needs for balance checks.
type OrderSummary struct {
	ID     string
	Status orders.Status
	Items  []Line
}

// Line is one order item reduced to its billing fields.
type Line struct {
	Price         decimal.Decimal
	Quantity      int64
	OrderClientID *string
}

// Total sums price times quantity over the lines in the given scope. A nil
// scope covers the whole order.
func (o OrderSummary) Total(scope *string) decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		if scope != nil && (line.OrderClientID == nil || *line.OrderClientID != *scope) {
			continue
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}
	return total
}

// CompletedTotal sums COMPLETED payment amounts in the given scope.
func CompletedTotal(list []Payment, scope *string) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range list {
		if payment.Status != StatusCompleted {
			continue
		}
		if scope != nil && (payment.OrderClientID == nil || *payment.OrderClientID != *scope) {
			continue
		}
		total = total.Add(payment.Amount)
	}
	return total
}
