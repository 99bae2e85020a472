package cashregister

import "github.com/shopspring/decimal"

// OpenRequest starts a till session.
type OpenRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// CreateTransactionRequest posts against the owner's open register.
type CreateTransactionRequest struct {
	OriginType    OriginType      `json:"originType" validate:"required,oneof=EXPENSE INCREMENT"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod *string         `json:"paymentMethod,omitempty" validate:"omitempty,oneof=CASH CARD PIX"`
	Reason        *string         `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RegisterPaymentsRequest records the physically counted breakdown by method
// before the final close.
type RegisterPaymentsRequest struct {
	Payments map[string]decimal.Decimal `json:"payments" validate:"required,min=1"`
}
