package cart

import (
	cartdto "github.com/angelmondragon/storefront-cart/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/pkg/money"
	"github.com/angelmondragon/storefront-cart/pkg/types"
)

// Pricing is the display context for cart amounts.
type Pricing struct {
	DeliveryFee int64
	Currency    string
	Exponent    int32
}

func (p Pricing) amount(minor int64) types.Amount {
	return types.Amount{Minor: minor, Display: money.Display(minor, p.Exponent, p.Currency)}
}

// NewCartView renders a store's contents with derived totals.
func NewCartView(store *cartsvc.Store, pricing Pricing) cartdto.CartView {
	snap := store.Snapshot()
	items := make([]cartdto.CartViewItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, cartdto.CartViewItem{
			MenuID:         item.Menu.ID.String(),
			Name:           item.Menu.Name,
			Size:           item.Size,
			Quantity:       item.Quantity,
			Image:          item.Menu.Image,
			RestaurantID:   item.Menu.RestaurantID,
			RestaurantName: item.Menu.RestaurantName,
			Attributes:     item.Menu.Attributes,
			UnitPrice:      pricing.amount(item.Menu.Price),
			LineTotal:      pricing.amount(item.Total()),
		})
	}
	return cartdto.CartView{
		Items:       items,
		LineCount:   len(items),
		Quantity:    snap.Quantity,
		Currency:    pricing.Currency,
		Subtotal:    pricing.amount(snap.Subtotal),
		DeliveryFee: pricing.amount(pricing.DeliveryFee),
		GrandTotal:  pricing.amount(snap.GrandTotal(pricing.DeliveryFee)),
		Durable:     store.Durable(),
	}
}
