// Package reports builds read-only sales summaries over settled data.
package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayTotal is the completed payment volume of a single day.
type DayTotal struct {
	Day       string          `json:"day"`
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formattedTotal"`
}

// MethodTotal is the completed payment volume of a single payment method.
type MethodTotal struct {
	Method    string          `json:"method"`
	Count     int64           `json:"count"`
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formattedTotal"`
}

// ProductTotal ranks a product line by revenue. Names come from the order
// item snapshot, so deleted products still show up.
type ProductTotal struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formattedTotal"`
}

// SalesReport summarises completed payments over a period.
type SalesReport struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Total       decimal.Decimal `json:"total"`
	Formatted   string          `json:"formattedTotal"`
	ByDay       []DayTotal      `json:"byDay"`
	ByMethod    []MethodTotal   `json:"byMethod"`
	TopProducts []ProductTotal  `json:"topProducts"`
}
