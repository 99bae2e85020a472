package stock

import "github.com/shopspring/decimal"

// CreateItemRequest registers a new stock unit from a purchase.
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"required"`
	UnitMeasure string           `json:"unitMeasure" validate:"required,max=20"`
	UnitPrice   decimal.Decimal  `json:"unitPrice" validate:"required"`
	TotalPrice  decimal.Decimal  `json:"totalPrice" validate:"required"`
	MinStock    *decimal.Decimal `json:"minStock,omitempty"`
	ExpenseID   string           `json:"expenseId" validate:"required,uuid"`
}

// UpdateItemRequest applies incremental receipt deltas. Quantity and
// TotalPrice are added to the stored accumulators, never overwritten.
type UpdateItemRequest struct {
	Name       *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
	MinStock   *decimal.Decimal `json:"minStock,omitempty"`
	ExpenseID  *string          `json:"expenseId,omitempty" validate:"omitempty,uuid"`
}

// UpdateUnitPriceRequest overwrites the unit price outside a receipt.
type UpdateUnitPriceRequest struct {
	UnitPrice  decimal.Decimal `json:"unitPrice" validate:"required"`
	TotalPrice decimal.Decimal `json:"totalPrice" validate:"required"`
}

// InventoryCount is one physically counted stock quantity.
type InventoryCount struct {
	ID       string          `json:"id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// UpdateByInventoryRequest reconciles stored quantities with a stocktake.
type UpdateByInventoryRequest struct {
	Items []InventoryCount `json:"items" validate:"required,min=1,dive"`
}
