package cart

import (
	"context"
	"net/http"

	cartdto "github.com/angelmondragon/storefront-cart/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/api/responses"
	"github.com/angelmondragon/storefront-cart/api/validators"
	cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// Registry resolves the cart store of a session.
type Registry interface {
	Get(ctx context.Context, sessionID string) (*cartsvc.Store, error)
}

// CartFetch returns the session's cart.
func CartFetch(reg Registry, pricing Pricing, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := StoreFromRequest(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewCartView(store, pricing))
	}
}

// CartAddItem adds a menu item in a size, merging with an existing line.
func CartAddItem(reg Registry, pricing Pricing, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := StoreFromRequest(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Add(r.Context(), toMenu(payload.Menu), payload.Size, payload.Quantity)
		responses.WriteSuccess(w, NewCartView(store, pricing))
	}
}

// CartIncreaseItem adds one unit to a line. Absent lines are left alone.
func CartIncreaseItem(reg Registry, pricing Pricing, logg *logger.Logger) http.HandlerFunc {
	return lineMutation(reg, pricing, logg, (*cartsvc.Store).Increase)
}

// CartDecreaseItem removes one unit, dropping the line at zero.
func CartDecreaseItem(reg Registry, pricing Pricing, logg *logger.Logger) http.HandlerFunc {
	return lineMutation(reg, pricing, logg, (*cartsvc.Store).Decrease)
}

// CartRemoveItem drops a line regardless of quantity.
func CartRemoveItem(reg Registry, pricing Pricing, logg *logger.Logger) http.HandlerFunc {
	return lineMutation(reg, pricing, logg, (*cartsvc.Store).Remove)
}

type lineOp func(s *cartsvc.Store, ctx context.Context, menuID cartsvc.MenuID, size string)

func lineMutation(reg Registry, pricing Pricing, logg *logger.Logger, op lineOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := StoreFromRequest(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		menuID, err := validators.MenuIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size, err := validators.SizeQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		op(store, r.Context(), cartsvc.MenuID(menuID), size)
		responses.WriteSuccess(w, NewCartView(store, pricing))
	}
}

// StoreFromRequest resolves the cart of the session attached by the Session
// middleware.
func StoreFromRequest(reg Registry, r *http.Request) (*cartsvc.Store, error) {
	if reg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return reg.Get(r.Context(), sessionID)
}
