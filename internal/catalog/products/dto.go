package products

import "github.com/shopspring/decimal"

// StockLinkInput declares how much of a stock unit one sale consumes.
type StockLinkInput struct {
	StockID  string          `json:"stockId" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// CreateRequest registers a product, optionally linked to stock.
type CreateRequest struct {
	Name          string           `json:"name" validate:"required,max=120"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	CategoryID    string           `json:"categoryId" validate:"required,uuid"`
	StockProducts []StockLinkInput `json:"stockProducts,omitempty" validate:"omitempty,dive"`
}

// UpdateRequest patches a product. A non-nil StockProducts replaces the whole
// link set, an empty slice unlinks the product from stock.
type UpdateRequest struct {
	Name          *string           `json:"name,omitempty" validate:"omitempty,max=120"`
	Description   *string           `json:"description,omitempty" validate:"omitempty,max=500"`
	Price         *decimal.Decimal  `json:"price,omitempty"`
	CategoryID    *string           `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	StockProducts *[]StockLinkInput `json:"stockProducts,omitempty" validate:"omitempty,dive"`
}
