package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
)

const (
	defaultTimeout          = 10 * time.Second
	responseBodyLimit int64 = 1 << 20
	errorBodyLimit    int64 = 1024
)

const (
	opCreateOrder = "create_order"
	opGetOrder    = "get_order"
	opPing        = "ping"
)

var errBaseURLRequired = errors.New("commerce api base url is required")

// Observer receives the latency of every Commerce API call.
type Observer interface {
	ObserveCommerce(operation, status string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveCommerce(string, string, time.Duration) {}

// Client talks to the remote Commerce API, which owns pricing, orders and
// access control. The caller's bearer token is forwarded as-is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observer   Observer
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewClient builds a Commerce API client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		observer:   nopObserver{},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type tokenKey struct{}

// WithBearerToken stores the caller's access token for forwarding.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// BearerToken returns the token stored by WithBearerToken.
func BearerToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// OrderItem is one line of an order-creation request.
type OrderItem struct {
	MenuID    string `json:"menu_id"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// OrderRequest is the payload of POST /orders. Amounts are minor units and
// are advisory: the Commerce API recomputes them.
type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	Subtotal        int64       `json:"subtotal"`
	DeliveryFee     int64       `json:"delivery_fee"`
	GrandTotal      int64       `json:"grand_total"`
	Currency        string      `json:"currency"`
	CustomerName    string      `json:"customer_name"`
	Phone           string      `json:"phone"`
	DeliveryAddress string      `json:"delivery_address"`
	Notes           string      `json:"notes,omitempty"`
	PaymentMethod   string      `json:"payment_method"`
}

// Order is the order summary returned by the Commerce API.
type Order struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status,omitempty"`
	PaymentURL    string      `json:"payment_url,omitempty"`
	GrandTotal    int64       `json:"grand_total"`
	Currency      string      `json:"currency,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// CreateOrder submits an order. idempotencyKey lets the remote API collapse
// retries of the same submission.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "commerce client not configured")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order request")
	}
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}

	var order Order
	if err := c.do(ctx, opCreateOrder, http.MethodPost, "/orders", payload, headers, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches the current state of an order for tracking.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "commerce client not configured")
	}
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var order Order
	if err := c.do(ctx, opGetOrder, http.MethodGet, "/orders/"+url.PathEscape(trimmed), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Ping checks that the Commerce API answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "commerce client not configured")
	}
	start := c.now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build commerce health request")
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observer.ObserveCommerce(opPing, "error", c.now().Sub(start))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commerce api unreachable")
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyLimit))
	c.observer.ObserveCommerce(opPing, statusClass(resp.StatusCode), c.now().Sub(start))

	if resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("commerce api health returned status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, headers http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build commerce request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if token := BearerToken(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observer.ObserveCommerce(op, "error", c.now().Sub(start))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commerce api request failed")
	}
	defer func() { _ = resp.Body.Close() }()
	c.observer.ObserveCommerce(op, statusClass(resp.StatusCode), c.now().Sub(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read commerce response")
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, env.Message, raw)
	}
	if decodeErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode commerce response")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "commerce api rejected the request"
		}
		return pkgerrors.New(pkgerrors.CodeConflict, msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode commerce payload")
	}
	return nil
}

// statusError maps a non-2xx response onto the local error taxonomy.
func statusError(status int, message string, raw []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, orDefault(message, "commerce api requires authentication"))
	case status == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, orDefault(message, "commerce api denied access"))
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, orDefault(message, "resource not found"))
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeConflict, orDefault(message, "commerce api rejected the request")).
			WithDetails(map[string]any{"status": status})
	case status >= 400 && status < 500:
		return pkgerrors.New(pkgerrors.CodeValidation, orDefault(message, "commerce api rejected the request"))
	default:
		detail := message
		if detail == "" {
			detail = strings.TrimSpace(string(truncate(raw, errorBodyLimit)))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", status, detail), "commerce api unavailable")
	}
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

func truncate(b []byte, limit int64) []byte {
	if int64(len(b)) > limit {
		return b[:limit]
	}
	return b
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
