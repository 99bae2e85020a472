// Package bills tracks payable obligations (rent, utilities) outside the
// sales pipeline, with optional recurrence chains.
package bills

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of a bill.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Recurrence interval of a bill.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "NONE"
	RecurrenceWeekly  Recurrence = "WEEKLY"
	RecurrenceMonthly Recurrence = "MONTHLY"
)

// Bill is one payable obligation. Recurring bills chain successive
// occurrences through RecurrenceParentID, all pointing at the first bill.
type Bill struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Amount             decimal.Decimal `json:"amount"`
	DueDate            time.Time       `json:"dueDate"`
	Status             Status          `json:"status"`
	PaidAt             *time.Time      `json:"paidAt,omitempty"`
	Recurrence         Recurrence      `json:"recurrence"`
	RecurrenceParentID *string         `json:"recurrenceParentId,omitempty"`
	ExpenseID          string          `json:"expenseId"`
	OwnerID            string          `json:"-"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// NextDueDate advances the due date by one recurrence interval.
func (b Bill) NextDueDate() time.Time {
	switch b.Recurrence {
	case RecurrenceWeekly:
		return b.DueDate.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return b.DueDate.AddDate(0, 1, 0)
	}
	return b.DueDate
}

// ChainParentID is the parent id a successor must carry: the original bill
// of the chain, or this bill when it is the first occurrence.
func (b Bill) ChainParentID() string {
	if b.RecurrenceParentID != nil {
		return *b.RecurrenceParentID
	}
	return b.ID
}
