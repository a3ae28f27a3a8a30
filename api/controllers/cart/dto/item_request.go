package cartdto

import cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	Menu     MenuPayload `json:"menu"`
	Size     string      `json:"size" validate:"max=64"`
	Quantity int         `json:"quantity" validate:"lte=999"`
}

// MenuPayload is the menu snapshot the storefront UI sends with an add.
type MenuPayload struct {
	ID             cartsvc.MenuID    `json:"id" validate:"required,max=128"`
	Name           string            `json:"name" validate:"required,max=200"`
	Price          int64             `json:"price" validate:"gte=0,lte=1000000000000"`
	Image          string            `json:"image,omitempty" validate:"max=2048"`
	Description    string            `json:"description,omitempty" validate:"max=2000"`
	Category       string            `json:"category,omitempty" validate:"max=100"`
	RestaurantID   string            `json:"restaurant_id,omitempty" validate:"max=128"`
	RestaurantName string            `json:"restaurant_name,omitempty" validate:"max=200"`
	Attributes     map[string]string `json:"attributes,omitempty" validate:"max=20"`
}
