package orders

// ClientInfo identifies the customer opening the tab. With a phone the order
// is linked to a durable client record, otherwise the name is embedded on the
// order itself.
type ClientInfo struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// ItemInput is one requested product line.
type ItemInput struct {
	ProductID string  `json:"productId" validate:"required,uuid"`
	Quantity  int64   `json:"quantity" validate:"required,min=1"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CreateRequest opens a new tab.
type CreateRequest struct {
	Note   *string     `json:"note,omitempty" validate:"omitempty,max=500"`
	Client *ClientInfo `json:"client,omitempty"`
	Items  []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// AddItemsRequest appends lines to an open tab.
type AddItemsRequest struct {
	Items         []ItemInput `json:"items" validate:"required,min=1,dive"`
	OrderClientID *string     `json:"orderClientId,omitempty" validate:"omitempty,uuid"`
}

// UpdateStatusRequest archives or reopens a tab. Closing goes through the
// settlement flow instead.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=OPEN ARCHIVED"`
}
