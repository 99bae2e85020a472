package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryType classifies a stock movement.
type HistoryType string

const (
	HistoryIncoming   HistoryType = "INCOMING"
	HistoryOutgoing   HistoryType = "OUTGOING"
	HistoryAdjustment HistoryType = "ADJUSTMENT"
	HistoryInventory  HistoryType = "INVENTORY"
)

// Item is a purchasable inventory unit. Quantity only ever changes together
// with a paired HistoryEntry append inside the same transaction.
type Item struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Quantity               decimal.Decimal  `json:"quantity"`
	UnitMeasure            string           `json:"unitMeasure"`
	UnitPrice              decimal.Decimal  `json:"unitPrice"`
	TotalAmountSpent       decimal.Decimal  `json:"totalAmountSpent"`
	TotalQuantityPurchased decimal.Decimal  `json:"totalQuantityPurchased"`
	MinStock               *decimal.Decimal `json:"minStock,omitempty"`
	ExpenseID              string           `json:"expenseId"`
	OwnerID                string           `json:"-"`
	CreatedAt              time.Time        `json:"createdAt"`
}

// AverageUnitCost derives the weighted-average cost of one unit across the
// item's whole purchase history.
func (i Item) AverageUnitCost() decimal.Decimal {
	if i.TotalQuantityPurchased.IsZero() {
		return decimal.Zero
	}
	return i.TotalAmountSpent.Div(i.TotalQuantityPurchased)
}

// HistoryEntry is an append-only movement record. Never updated or deleted.
type HistoryEntry struct {
	ID              string           `json:"id"`
	StockID         string           `json:"stockId"`
	Type            HistoryType      `json:"type"`
	InitialQuantity decimal.Decimal  `json:"initialQuantity"`
	FinalQuantity   decimal.Decimal  `json:"finalQuantity"`
	Description     string           `json:"description"`
	TotalPrice      *decimal.Decimal `json:"totalPrice,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unitPrice,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// SaleLink maps a product to the stock it consumes. Quantity is how much of
// the stock unit one sold product uses.
type SaleLink struct {
	StockID   string
	ProductID string
	Quantity  decimal.Decimal
}
