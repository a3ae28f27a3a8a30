package controllers

import (
	"net/http"

	cartctl "github.com/angelmondragon/storefront-cart/api/controllers/cart"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/api/responses"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// SessionView tells the storefront UI which cart it is on and what navigation to show.
type SessionView struct {
	SessionID    string `json:"session_id"`
	Durable      bool   `json:"durable"`
	CartQuantity int    `json:"cart_quantity"`
	Role         string `json:"role"`
	DisplayName  string `json:"display_name,omitempty"`
	HasDashboard bool   `json:"has_dashboard"`
}

func SessionInfo(reg cartctl.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartctl.StoreFromRequest(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hint := middleware.RoleHintFromContext(r.Context())
		responses.WriteSuccess(w, SessionView{
			SessionID:    middleware.SessionIDFromContext(r.Context()),
			Durable:      store.Durable(),
			CartQuantity: store.Quantity(),
			Role:         hint.Role.String(),
			DisplayName:  hint.Name,
			HasDashboard: hint.Role.HasDashboard(),
		})
	}
}
