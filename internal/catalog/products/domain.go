// Package products manages the sellable menu catalog and its links to stock.
package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable menu entry. Order items snapshot its price at sale
// time, so deleting a product never rewrites past orders.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId"`
	OwnerID     string          `json:"-"`
	StockLinks  []StockLink     `json:"stockProducts"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// StockLink binds a product to the stock it consumes per sold unit.
type StockLink struct {
	ID       string          `json:"id"`
	StockID  string          `json:"stockId"`
	Quantity decimal.Decimal `json:"quantity"`
}
