package cartdto

import "github.com/angelmondragon/storefront-cart/pkg/types"

// CartView is the cart representation returned by every cart route.
type CartView struct {
	Items       []CartViewItem `json:"items"`
	LineCount   int            `json:"line_count"`
	Quantity    int            `json:"quantity"`
	Currency    string         `json:"currency"`
	Subtotal    types.Amount   `json:"subtotal"`
	DeliveryFee types.Amount   `json:"delivery_fee"`
	GrandTotal  types.Amount   `json:"grand_total"`
	Durable     bool           `json:"durable"`
}

// CartViewItem is one line of the cart view.
type CartViewItem struct {
	MenuID         string            `json:"menu_id"`
	Name           string            `json:"name"`
	Size           string            `json:"size"`
	Quantity       int               `json:"quantity"`
	Image          string            `json:"image,omitempty"`
	RestaurantID   string            `json:"restaurant_id,omitempty"`
	RestaurantName string            `json:"restaurant_name,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	UnitPrice      types.Amount      `json:"unit_price"`
	LineTotal      types.Amount      `json:"line_total"`
}
