// Package orders owns the order aggregate: a tab with clients, line items
// carrying locked-in prices, and a payment-driven status.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of an order tab.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusClosed   Status = "CLOSED"
	StatusArchived Status = "ARCHIVED"
)

// Order is a tab. It carries either a durable client association or embedded
// client data, never neither.
type Order struct {
	ID          string    `json:"id"`
	Note        *string   `json:"note,omitempty"`
	Status      Status    `json:"status"`
	ClientsData *string   `json:"clientsData,omitempty"`
	Clients     []Client  `json:"clients"`
	Items       []Item    `json:"items"`
	OwnerID     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Total sums price times quantity across all items.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// Client is a split-bill sub-tab within the order, backed by a durable
// client record.
type Client struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// Item is one product line. Price and name are snapshotted at add time and
// never recomputed, so the line keeps rendering after the product is deleted.
type Item struct {
	ID            string          `json:"id"`
	ProductID     *string         `json:"productId,omitempty"`
	ProductName   string          `json:"productName"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Note          *string         `json:"note,omitempty"`
	OrderClientID *string         `json:"orderClientId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
