package controllers

import (
	"net/http"

	cartctl "github.com/angelmondragon/storefront-cart/api/controllers/cart"
	cartdto "github.com/angelmondragon/storefront-cart/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/api/responses"
	"github.com/angelmondragon/storefront-cart/api/validators"
	"github.com/angelmondragon/storefront-cart/internal/checkout"
	"github.com/angelmondragon/storefront-cart/internal/commerce"
	"github.com/angelmondragon/storefront-cart/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// CheckoutRequest is the body of POST /api/v1/checkout.
type CheckoutRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,max=120"`
	Phone           string `json:"phone" validate:"required,max=32"`
	DeliveryAddress string `json:"delivery_address" validate:"required,max=500"`
	Notes           string `json:"notes,omitempty" validate:"max=500"`
	PaymentMethod   string `json:"payment_method" validate:"required,payment_method"`
}

// CheckoutResponse carries the acknowledged order and the now-empty cart.
type CheckoutResponse struct {
	Order *commerce.Order  `json:"order"`
	Cart  cartdto.CartView `json:"cart"`
}

// Checkout submits the session's cart. 201 on success; on failure the cart
// is unchanged and the typed error is returned.
func Checkout(reg cartctl.Registry, svc checkout.Service, pricing cartctl.Pricing, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store, err := cartctl.StoreFromRequest(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		order, err := svc.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), store, checkout.Input{
			CustomerName:    payload.CustomerName,
			Phone:           payload.Phone,
			DeliveryAddress: payload.DeliveryAddress,
			Notes:           payload.Notes,
			PaymentMethod:   method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, CheckoutResponse{
			Order: order,
			Cart:  cartctl.NewCartView(store, pricing),
		})
	}
}
