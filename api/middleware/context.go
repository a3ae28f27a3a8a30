package middleware

import (
	"context"

	"github.com/angelmondragon/storefront-cart/pkg/auth"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxRoleHint  contextKey = "role_hint"
)

// SessionIDFromContext returns the cart session resolved by Session.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the cart session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// RoleHintFromContext returns the unverified caller hint, or a guest hint.
func RoleHintFromContext(ctx context.Context) auth.Hint {
	if ctx == nil {
		return auth.GuestHint
	}
	if v, ok := ctx.Value(ctxRoleHint).(auth.Hint); ok {
		return v
	}
	return auth.GuestHint
}

func withRoleHint(ctx context.Context, hint auth.Hint) context.Context {
	return context.WithValue(ctx, ctxRoleHint, hint)
}
