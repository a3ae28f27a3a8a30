package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MenuID identifies a purchasable menu item. Snapshots written by older
// storefront builds carry numeric ids, so both JSON numbers and strings
// decode into the same canonical string form.
type MenuID string

func (id MenuID) String() string {
	return string(id)
}

func (id *MenuID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = MenuID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("menu id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("menu id must be an integer: %w", err)
	}
	*id = MenuID(n.String())
	return nil
}

// Menu is the snapshot of a menu item taken when it is added to the cart.
// Prices are integer minor currency units.
type Menu struct {
	ID             MenuID            `json:"id"`
	Name           string            `json:"name"`
	Price          int64             `json:"price"`
	Image          string            `json:"image,omitempty"`
	Description    string            `json:"description,omitempty"`
	Category       string            `json:"category,omitempty"`
	RestaurantID   string            `json:"restaurant_id,omitempty"`
	RestaurantName string            `json:"restaurant_name,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

func (m Menu) clone() Menu {
	if m.Attributes != nil {
		attrs := make(map[string]string, len(m.Attributes))
		for k, v := range m.Attributes {
			attrs[k] = v
		}
		m.Attributes = attrs
	}
	return m
}

// Key is the identity of a line item: the same menu ordered in two sizes is
// two line items.
type Key struct {
	MenuID MenuID
	Size   string
}

func (k Key) String() string {
	return k.MenuID.String() + "/" + k.Size
}

// LineItem is one entry of the cart. Quantity is always at least 1.
type LineItem struct {
	Menu     Menu   `json:"menu"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func (li LineItem) Key() Key {
	return Key{MenuID: li.Menu.ID, Size: li.Size}
}

// Bounds on a single line. Quantities above MaxLineQuantity saturate;
// menus priced above MaxUnitPrice are not admitted.
const (
	MaxLineQuantity = 999
	MaxUnitPrice    = int64(1_000_000_000_000)
)

// Total is the line price: unit price times quantity, saturating at
// math.MaxInt64.
func (li LineItem) Total() int64 {
	return mulAmount(li.Menu.Price, int64(li.Quantity))
}

// addQuantity sums two quantities, capped at MaxLineQuantity.
func addQuantity(a, b int) int {
	if b >= MaxLineQuantity-a {
		return MaxLineQuantity
	}
	return a + b
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxLineQuantity:
		return MaxLineQuantity
	}
	return q
}

func mulAmount(price, quantity int64) int64 {
	if price <= 0 || quantity <= 0 {
		return 0
	}
	if price > math.MaxInt64/quantity {
		return math.MaxInt64
	}
	return price * quantity
}

func addAmount(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func (li LineItem) clone() LineItem {
	li.Menu = li.Menu.clone()
	return li
}

func normalizeSize(size string) string {
	return strings.TrimSpace(size)
}
