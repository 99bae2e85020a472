package bills

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequest registers a payable bill.
type CreateRequest struct {
	Name       string          `json:"name" validate:"required,max=120"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	DueDate    time.Time       `json:"dueDate" validate:"required"`
	Recurrence Recurrence      `json:"recurrence" validate:"omitempty,oneof=NONE WEEKLY MONTHLY"`
	ExpenseID  string          `json:"expenseId" validate:"required,uuid"`
}

// UpdateRequest patches a pending bill.
type UpdateRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	DueDate   *time.Time       `json:"dueDate,omitempty"`
	ExpenseID *string          `json:"expenseId,omitempty" validate:"omitempty,uuid"`
}

// ListFilter narrows the bill listing.
type ListFilter struct {
	Status *Status
}
