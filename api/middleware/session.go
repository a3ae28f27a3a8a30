package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

const (
	SessionHeader = "X-Cart-Session"
	SessionCookie = "cart_session"
)

// SessionOptions tunes the cart session cookie.
type SessionOptions struct {
	MaxAge time.Duration
	Secure bool
}

// Session resolves the cart session of the caller from the X-Cart-Session
// header or the cart_session cookie. A missing or malformed id is replaced
// with a fresh one, which is returned in both the header and the cookie.
func Session(logg *logger.Logger, opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, fromCookie := readSession(r)
			issued := false
			if !cart.ValidSessionID(sessionID) {
				sessionID = uuid.NewString()
				issued = true
			}

			w.Header().Set(SessionHeader, sessionID)
			if issued || !fromCookie {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
				if issued {
					logg.Debug(ctx, "session.issued")
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func readSession(r *http.Request) (string, bool) {
	if v := strings.TrimSpace(r.Header.Get(SessionHeader)); v != "" {
		return v, false
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value), true
	}
	return "", false
}
