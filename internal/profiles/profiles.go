// Package profiles manages the business-owner accounts everything else is
// scoped to.
package profiles

import "time"

// Profile is a business owner account.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateRequest patches the authenticated profile.
type UpdateRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}
