package auth

import (
	"github.com/angelmondragon/storefront-cart/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// HintClaims is the subset of the platform access token the storefront
// reads. Nothing here is verified.
type HintClaims struct {
	Name  string     `json:"name,omitempty"`
	Role  enums.Role `json:"role"`
	Roles []string   `json:"roles,omitempty"`
	jwt.RegisteredClaims
}
