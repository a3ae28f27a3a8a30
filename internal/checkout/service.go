package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/internal/commerce"
	"github.com/angelmondragon/storefront-cart/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/metrics"
	"github.com/google/uuid"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, req commerce.OrderRequest, idempotencyKey string) (*commerce.Order, error)
}

// Recorder counts checkout outcomes.
type Recorder interface {
	IncCheckout(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) IncCheckout(string) {}

// Service submits a session's cart to the Commerce API.
type Service interface {
	Submit(ctx context.Context, sessionID string, store *cart.Store, input Input) (*commerce.Order, error)
}

// Input is the customer data collected by the checkout form.
type Input struct {
	CustomerName    string
	Phone           string
	DeliveryAddress string
	Notes           string
	PaymentMethod   enums.PaymentMethod
}

// Config carries the pricing context the cart itself does not own.
type Config struct {
	DeliveryFee int64
	Currency    string
}

type service struct {
	orders  orderCreator
	guard   Guard
	cfg     Config
	logg    *logger.Logger
	metrics Recorder
	newKey  func() string
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*service)

func WithGuard(g Guard) ServiceOption {
	return func(s *service) {
		if g != nil {
			s.guard = g
		}
	}
}

func WithLogger(logg *logger.Logger) ServiceOption {
	return func(s *service) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func WithMetrics(rec Recorder) ServiceOption {
	return func(s *service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// NewService builds the checkout service.
func NewService(orders orderCreator, cfg Config, opts ...ServiceOption) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	if cfg.DeliveryFee < 0 {
		return nil, fmt.Errorf("delivery fee must be non-negative")
	}
	svc := &service{
		orders:  orders,
		guard:   NewLocalGuard(),
		cfg:     cfg,
		logg:    logger.Nop(),
		metrics: nopRecorder{},
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Submit places an order for the current cart contents. The submitted lines
// are taken out of the cart only after the Commerce API acknowledges the
// order; on any failure the cart is left as it was. Items added while the
// order is in flight stay in the cart.
func (s *service) Submit(ctx context.Context, sessionID string, store *cart.Store, input Input) (*commerce.Order, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	release, err := s.guard.Acquire(ctx, sessionID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncCheckout(metrics.CheckoutConflict)
		}
		return nil, err
	}
	defer release()

	snapshot := store.Snapshot()
	if len(snapshot.Items) == 0 {
		s.metrics.IncCheckout(metrics.CheckoutEmpty)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	normalized, err := ValidateInput(input)
	if err != nil {
		return nil, err
	}

	req := BuildOrderRequest(snapshot, normalized, s.cfg)
	key := s.newKey()
	ctx = s.logg.WithFields(ctx, map[string]any{"idempotency_key": key, "line_items": len(req.Items)})

	order, err := s.orders.CreateOrder(ctx, req, key)
	if err != nil {
		s.metrics.IncCheckout(outcomeFor(err))
		s.logg.WarnErr(ctx, "checkout.submit_failed", err)
		return nil, err
	}

	store.Consume(ctx, snapshot.Items)
	s.metrics.IncCheckout(metrics.CheckoutSuccess)
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID), "checkout.order_created")
	return order, nil
}

// BuildOrderRequest maps a cart snapshot and customer input onto the
// Commerce API order payload.
func BuildOrderRequest(snapshot cart.Snapshot, input Input, cfg Config) commerce.OrderRequest {
	items := make([]commerce.OrderItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, commerce.OrderItem{
			MenuID:    item.Menu.ID.String(),
			Name:      item.Menu.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.Menu.Price,
			LineTotal: item.Total(),
		})
	}
	return commerce.OrderRequest{
		Items:           items,
		Subtotal:        snapshot.Subtotal,
		DeliveryFee:     cfg.DeliveryFee,
		GrandTotal:      snapshot.GrandTotal(cfg.DeliveryFee),
		Currency:        cfg.Currency,
		CustomerName:    input.CustomerName,
		Phone:           input.Phone,
		DeliveryAddress: input.DeliveryAddress,
		Notes:           input.Notes,
		PaymentMethod:   input.PaymentMethod.String(),
	}
}

// FieldViolation names one invalid checkout field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateInput trims the input and reports every missing or invalid field.
func ValidateInput(input Input) (Input, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.DeliveryAddress = strings.TrimSpace(input.DeliveryAddress)
	input.Notes = strings.TrimSpace(input.Notes)

	var violations []FieldViolation
	if input.CustomerName == "" {
		violations = append(violations, FieldViolation{Field: "customer_name", Reason: "required"})
	}
	if input.Phone == "" {
		violations = append(violations, FieldViolation{Field: "phone", Reason: "required"})
	}
	if input.DeliveryAddress == "" {
		violations = append(violations, FieldViolation{Field: "delivery_address", Reason: "required"})
	}
	if !input.PaymentMethod.IsValid() {
		violations = append(violations, FieldViolation{Field: "payment_method", Reason: "unsupported"})
	}
	if len(violations) == 0 {
		return input, nil
	}
	return input, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("checkout has %d invalid field(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

func outcomeFor(err error) string {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict),
		pkgerrors.IsCode(err, pkgerrors.CodeValidation),
		pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized),
		pkgerrors.IsCode(err, pkgerrors.CodeForbidden):
		return metrics.CheckoutRejected
	default:
		return metrics.CheckoutFailed
	}
}
