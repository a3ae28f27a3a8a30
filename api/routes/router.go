package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-cart/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-cart/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-cart/api/controllers/orders"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-cart/internal/checkout"
	"github.com/angelmondragon/storefront-cart/internal/commerce"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

type commerceAPI interface {
	GetOrder(ctx context.Context, orderID string) (*commerce.Order, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *cart.Registry,
	checkoutService checkoutsvc.Service,
	commerceClient commerceAPI,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	pricing := cartcontrollers.Pricing{
		DeliveryFee: cfg.Cart.DeliveryFeeMinor(),
		Currency:    cfg.Cart.Currency,
		Exponent:    cfg.Cart.CurrencyExponent,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "cart_" + registry.Backend().Name(), Pinger: registry.Backend()},
			controllers.ReadinessCheck{Name: "commerce_api", Pinger: commerceClient},
		))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg, middleware.SessionOptions{
			MaxAge: cfg.Cart.SnapshotTTL,
			Secure: cfg.App.IsProd(),
		}))
		r.Use(middleware.RoleHint(logg))

		r.Get("/session", controllers.SessionInfo(registry, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(registry, pricing, logg))
			r.Post("/items", cartcontrollers.CartAddItem(registry, pricing, logg))
			r.Post("/items/{menuId}/increase", cartcontrollers.CartIncreaseItem(registry, pricing, logg))
			r.Post("/items/{menuId}/decrease", cartcontrollers.CartDecreaseItem(registry, pricing, logg))
			r.Delete("/items/{menuId}", cartcontrollers.CartRemoveItem(registry, pricing, logg))
		})

		r.Post("/checkout", controllers.Checkout(registry, checkoutService, pricing, logg))
		r.Get("/orders/{orderId}", ordercontrollers.OrderDetail(commerceClient, logg))
	})

	return r
}
