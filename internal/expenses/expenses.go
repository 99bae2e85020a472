// Package expenses manages expenditure categories that stock purchases are
// booked against.
package expenses

import (
	"time"
)

// Expense is a spending category owned by one profile.
type Expense struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateRequest registers a new expense category.
type CreateRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpdateRequest patches an expense category.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}
