package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cartctl "github.com/angelmondragon/storefront-cart/api/controllers/cart"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/internal/checkout"
	"github.com/angelmondragon/storefront-cart/internal/commerce"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
)

type stubCheckout struct {
	order *commerce.Order
	err   error
	input checkout.Input
}

func (s *stubCheckout) Submit(ctx context.Context, sessionID string, store *cartsvc.Store, input checkout.Input) (*commerce.Order, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	store.Clear(ctx)
	return s.order, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

const checkoutBody = `{"customer_name":"Sari","phone":"0812","delivery_address":"Jl. Merdeka 1","payment_method":"cash"}`

func sessionRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
}

func seededRegistry(t *testing.T) *cartsvc.Registry {
	t.Helper()
	reg := cartsvc.NewRegistry(nil, cartsvc.RegistryConfig{})
	store, err := reg.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	store.Add(context.Background(), cartsvc.Menu{ID: "m1", Name: "Burger", Price: 10000}, "L", 1)
	return reg
}

func TestCheckoutCreated(t *testing.T) {
	reg := seededRegistry(t)
	svc := &stubCheckout{order: &commerce.Order{ID: "ord-1", Status: "pending"}}

	resp := httptest.NewRecorder()
	Checkout(reg, svc, cartctl.Pricing{Currency: "IDR"}, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", checkoutBody))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data CheckoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Order.ID != "ord-1" || len(envelope.Data.Cart.Items) != 0 {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
	if svc.input.PaymentMethod != "cash" {
		t.Fatalf("expected parsed payment method, got %q", svc.input.PaymentMethod)
	}
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	reg := seededRegistry(t)
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeConflict, "restaurant closed")}

	resp := httptest.NewRecorder()
	Checkout(reg, svc, cartctl.Pricing{}, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", checkoutBody))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	store, _ := reg.Get(context.Background(), "sess-1")
	if store.Quantity() != 1 {
		t.Fatalf("expected cart unchanged, got %d", store.Quantity())
	}
}

func TestCheckoutRejectsBadPayload(t *testing.T) {
	reg := seededRegistry(t)
	resp := httptest.NewRecorder()
	Checkout(reg, &stubCheckout{}, cartctl.Pricing{}, nil).ServeHTTP(resp,
		sessionRequest(http.MethodPost, "/api/v1/checkout", `{"customer_name":"","payment_method":"barter"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSessionInfo(t *testing.T) {
	reg := seededRegistry(t)
	resp := httptest.NewRecorder()
	SessionInfo(reg, nil).ServeHTTP(resp, sessionRequest(http.MethodGet, "/api/v1/session", ""))

	var envelope struct {
		Data SessionView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.SessionID != "sess-1" || envelope.Data.CartQuantity != 1 || envelope.Data.Role != "guest" || envelope.Data.HasDashboard {
		t.Fatalf("unexpected session view %+v", envelope.Data)
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, ReadinessCheck{Name: "cart_backend", Pinger: stubPinger{}}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil,
		ReadinessCheck{Name: "cart_backend", Pinger: stubPinger{}},
		ReadinessCheck{Name: "commerce_api", Pinger: stubPinger{err: errors.New("down")}},
	).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"commerce_api":"down"`) {
		t.Fatalf("expected failing check in details, got %s", resp.Body.String())
	}
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK || resp.Header().Get("X-Storefront-Env") != "prod" {
		t.Fatalf("unexpected live response %d %v", resp.Code, resp.Header())
	}
}
