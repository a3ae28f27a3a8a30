package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
)

const (
	maxMenuIDLen = 128
	maxSizeLen   = 64
)

// MenuIDParam reads the {menuId} path segment.
func MenuIDParam(r *http.Request) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "menuId"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "menu id is required").WithDetails(map[string]any{"field": "menuId"})
	}
	if len(raw) > maxMenuIDLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "menu id too long").WithDetails(map[string]any{"field": "menuId", "max": maxMenuIDLen})
	}
	return raw, nil
}

// SizeQuery reads the optional ?size= variant selector. Absent means the
// default variant.
func SizeQuery(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("size"))
	if len(raw) > maxSizeLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": "size", "max": maxSizeLen})
	}
	return raw, nil
}
