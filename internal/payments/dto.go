package payments

import "github.com/shopspring/decimal"

// CreateRequest records a payment against an order.
type CreateRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        Method          `json:"method" validate:"required,oneof=CASH CARD PIX"`
	Note          *string         `json:"note,omitempty" validate:"omitempty,max=500"`
	OrderClientID *string         `json:"orderClientId,omitempty" validate:"omitempty,uuid"`
}
