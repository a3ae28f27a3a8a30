package cart

import (
	cartdto "github.com/angelmondragon/storefront-cart/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-cart/api/validators"
	cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"
)

func toMenu(payload cartdto.MenuPayload) cartsvc.Menu {
	return cartsvc.Menu{
		ID:             payload.ID,
		Name:           validators.SanitizeString(payload.Name, 200),
		Price:          payload.Price,
		Image:          validators.SanitizeString(payload.Image, 2048),
		Description:    validators.SanitizeString(payload.Description, 2000),
		Category:       validators.SanitizeString(payload.Category, 100),
		RestaurantID:   validators.SanitizeString(payload.RestaurantID, 128),
		RestaurantName: validators.SanitizeString(payload.RestaurantName, 200),
		Attributes:     payload.Attributes,
	}
}
