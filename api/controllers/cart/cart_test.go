package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/angelmondragon/storefront-cart/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
)

var testPricing = Pricing{DeliveryFee: 5000, Currency: "IDR"}

func newRequest(method, target, body string, sessionID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if sessionID != "" {
		req = req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
	}
	return req
}

func withMenuID(req *http.Request, menuID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("menuId", menuID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeView(t *testing.T, resp *httptest.ResponseRecorder) cartdto.CartView {
	t.Helper()
	var envelope struct {
		Data cartdto.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestCartAddThenIncrease(t *testing.T) {
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})

	resp := httptest.NewRecorder()
	CartAddItem(reg, testPricing, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items",
		`{"menu":{"id":"m1","name":"Burger","price":10000},"size":"L","quantity":1}`, "sess-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	req := withMenuID(newRequest(http.MethodPost, "/api/v1/cart/items/m1/increase?size=L", "", "sess-1"), "m1")
	CartIncreaseItem(reg, testPricing, nil).ServeHTTP(resp, req)

	view := decodeView(t, resp)
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", view.Items)
	}
	if view.Subtotal.Minor != 20000 || view.GrandTotal.Minor != 25000 {
		t.Fatalf("unexpected totals %+v / %+v", view.Subtotal, view.GrandTotal)
	}
	if view.Subtotal.Display != "IDR 20000" {
		t.Fatalf("unexpected display %q", view.Subtotal.Display)
	}
	if view.Quantity != 2 || !view.Durable {
		t.Fatalf("unexpected badge/durable %+v", view)
	}
}

func TestCartDecreaseAndRemove(t *testing.T) {
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})
	store, _ := reg.Get(context.Background(), "sess-1")
	store.Add(context.Background(), cartsvc.Menu{ID: "m1", Name: "Burger", Price: 10000}, "L", 1)
	store.Add(context.Background(), cartsvc.Menu{ID: "m2", Name: "Tea", Price: 2000}, "", 3)

	resp := httptest.NewRecorder()
	CartDecreaseItem(reg, testPricing, nil).ServeHTTP(resp,
		withMenuID(newRequest(http.MethodPost, "/api/v1/cart/items/m1/decrease?size=L", "", "sess-1"), "m1"))
	if view := decodeView(t, resp); len(view.Items) != 1 || view.Items[0].MenuID != "m2" {
		t.Fatalf("expected m1 removed at zero, got %+v", view.Items)
	}

	resp = httptest.NewRecorder()
	CartRemoveItem(reg, testPricing, nil).ServeHTTP(resp,
		withMenuID(newRequest(http.MethodDelete, "/api/v1/cart/items/m2", "", "sess-1"), "m2"))
	if view := decodeView(t, resp); len(view.Items) != 0 || view.GrandTotal.Minor != 5000 {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}

func TestCartMutationOnAbsentLineIsOK(t *testing.T) {
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})
	resp := httptest.NewRecorder()
	CartRemoveItem(reg, testPricing, nil).ServeHTTP(resp,
		withMenuID(newRequest(http.MethodDelete, "/api/v1/cart/items/ghost", "", "sess-1"), "ghost"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for benign absence, got %d", resp.Code)
	}
	if view := decodeView(t, resp); len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Items)
	}
}

func TestCartAddValidation(t *testing.T) {
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})
	cases := map[string]string{
		"missing id":        `{"menu":{"name":"Burger","price":100},"size":"","quantity":1}`,
		"negative price":    `{"menu":{"id":"m1","name":"Burger","price":-1},"quantity":1}`,
		"price too high":    `{"menu":{"id":"m1","name":"Burger","price":1000000000001},"quantity":1}`,
		"quantity too high": `{"menu":{"id":"m1","name":"Burger","price":10000},"quantity":1000}`,
		"quantity overflow": `{"menu":{"id":"m1","name":"Burger","price":10000},"quantity":9223372036854775807}`,
		"unknown field":     `{"menu":{"id":"m1","name":"Burger","price":1},"coupon":"x"}`,
		"not json":          `nope`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			CartAddItem(reg, testPricing, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items", body, "sess-1"))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestCartAddAcceptsMaximumQuantity(t *testing.T) {
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})
	resp := httptest.NewRecorder()
	CartAddItem(reg, testPricing, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items",
		`{"menu":{"id":"m1","name":"Burger","price":10000},"quantity":999}`, "sess-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	view := decodeView(t, resp)
	if view.Quantity != cartsvc.MaxLineQuantity || view.Subtotal.Minor != 10000*cartsvc.MaxLineQuantity {
		t.Fatalf("unexpected view at the quantity cap %+v", view)
	}
}

func TestCartFetchWithoutSession(t *testing.T) {
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})
	resp := httptest.NewRecorder()
	CartFetch(reg, testPricing, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/api/v1/cart", "", ""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}
