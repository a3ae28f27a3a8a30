package auth

import (
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// Hint is what the storefront shows about the caller: which role's
// navigation to render and a display name.
type Hint struct {
	Role    enums.Role `json:"role"`
	Name    string     `json:"name,omitempty"`
	Subject string     `json:"subject,omitempty"`
}

// GuestHint is returned for missing, malformed or expired tokens.
var GuestHint = Hint{Role: enums.RoleGuest}

// ParseHint decodes the token payload WITHOUT checking its signature. The
// result is for presentation only and must never gate access; the Commerce
// API verifies the same token on every call it receives.
func ParseHint(token string, now time.Time) (Hint, error) {
	claims := &HintClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return GuestHint, fmt.Errorf("decode token: %w", err)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && !now.Before(exp.Time) {
		return GuestHint, fmt.Errorf("token expired")
	}

	role := claims.Role
	if !role.IsValid() {
		role = enums.RoleGuest
		for _, candidate := range claims.Roles {
			if r := enums.Role(candidate); r.IsValid() {
				role = r
				break
			}
		}
	}
	return Hint{Role: role, Name: claims.Name, Subject: claims.Subject}, nil
}
