package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-cart/api/validators"
	"github.com/angelmondragon/storefront-cart/internal/commerce"
	"github.com/angelmondragon/storefront-cart/pkg/auth"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// RoleHint reads the caller's bearer token without verifying it, exposing a
// role hint for navigation and staging the token for forwarding to the
// Commerce API. It never rejects a request.
func RoleHint(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			hint := auth.GuestHint

			if token, err := validators.BearerToken(r.Header.Get("Authorization")); err == nil {
				ctx = commerce.WithBearerToken(ctx, token)
				parsed, err := auth.ParseHint(token, time.Now())
				if err != nil && logg != nil {
					logg.Debug(logg.WithField(ctx, "reason", err.Error()), "role_hint.unreadable")
				}
				hint = parsed
			}

			ctx = withRoleHint(ctx, hint)
			if logg != nil {
				ctx = logg.WithActorRole(ctx, hint.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
