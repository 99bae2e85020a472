// Package categories manages the product category tree of the menu.
package categories

import "time"

// Category groups products on the menu. Names are unique per profile.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateRequest registers a category.
type CreateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// UpdateRequest renames a category.
type UpdateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}
