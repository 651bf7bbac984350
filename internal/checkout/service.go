package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/internal/orders"
	product "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type addressLookup interface {
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
}

type paymentMethodLookup interface {
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.PaymentMethod, error)
}

// Service turns a cart into a durable order without ever overselling stock.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*PlacementResult, error)
}

// ServiceParams groups checkout dependencies.
type ServiceParams struct {
	Tx             txRunner
	ProductRepo    *product.Repository
	OrdersRepo     *orders.Repository
	Addresses      addressLookup
	PaymentMethods paymentMethodLookup
	Metrics        *metrics.OrderMetrics
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	tx             txRunner
	productRepo    *product.Repository
	ordersRepo     *orders.Repository
	addresses      addressLookup
	paymentMethods paymentMethodLookup
	metrics        *metrics.OrderMetrics
	logg           *logger.Logger
	now            func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address lookup required")
	}
	if params.PaymentMethods == nil {
		return nil, fmt.Errorf("payment method lookup required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		tx:             params.Tx,
		productRepo:    params.ProductRepo,
		ordersRepo:     params.OrdersRepo,
		addresses:      params.Addresses,
		paymentMethods: params.PaymentMethods,
		metrics:        params.Metrics,
		logg:           params.Logger,
		now:            params.Now,
	}, nil
}

// pricedLine is a validated cart line with the unit price captured at validation.
type pricedLine struct {
	productID uuid.UUID
	quantity  int
	price     decimal.Decimal
}

// PlaceOrder validates every line against live stock, then inserts the order,
// its items and the guarded stock decrements in a single transaction. Any
// failure leaves no order row and no stock change behind.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*PlacementResult, error) {
	if err := validateInput(userID, req); err != nil {
		s.reject(metrics.RejectInvalidInput)
		return nil, err
	}
	if err := s.checkReferences(ctx, userID, req); err != nil {
		return nil, err
	}

	lines, err := s.validateLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}

	addressID := req.DeliveryAddressID
	methodID := req.PaymentMethodID
	order := &models.Order{
		UserID:            userID,
		OrderDate:         s.now().UTC(),
		TotalAmount:       total,
		Status:            enums.OrderStatusPending,
		DeliveryAddressID: &addressID,
		PaymentMethodID:   &methodID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ordersRepo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return err
		}
		items := make([]models.OrderItem, len(lines))
		for i, line := range lines {
			items[i] = models.OrderItem{
				OrderID:      order.ID,
				ProductID:    line.productID,
				Position:     i,
				Quantity:     line.quantity,
				PriceAtOrder: line.price,
			}
		}
		if err := s.ordersRepo.WithTx(tx).CreateItems(ctx, items); err != nil {
			return err
		}
		products := s.productRepo.WithTx(tx)
		for i, line := range lines {
			ok, err := products.DecrementStock(ctx, line.productID, line.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return stockChanged(i, line)
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			s.reject(metrics.RejectInsufficientStock)
			return nil, typed
		}
		s.reject(metrics.RejectCommitFailure)
		s.logg.Error(s.logg.WithField(ctx, "user_id", userID.String()), "order commit rolled back", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order could not be placed")
	}

	if s.metrics != nil {
		s.metrics.Placed(total)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"total_amount": total.StringFixed(2),
		"lines":        len(lines),
	}), "order placed")

	return &PlacementResult{
		OrderID:     order.ID,
		TotalAmount: total,
		Status:      order.Status,
		OrderDate:   order.OrderDate,
	}, nil
}

func validateInput(userID uuid.UUID, req PlaceOrderRequest) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthenticated")
	}
	if len(req.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if req.DeliveryAddressID == uuid.Nil || req.PaymentMethodID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery_address_id and payment_method_id are required")
	}
	seen := make(map[uuid.UUID]int, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required").
				WithDetails(map[string]any{"line": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0").
				WithDetails(map[string]any{"line": i, "product_id": item.ProductID})
		}
		if first, dup := seen[item.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "each product may appear only once per order").
				WithDetails(map[string]any{"line": i, "first_line": first, "product_id": item.ProductID})
		}
		seen[item.ProductID] = i
	}
	return nil
}

// checkReferences requires the address and payment method to belong to the caller.
func (s *service) checkReferences(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) error {
	if _, err := s.addresses.FindOwned(ctx, userID, req.DeliveryAddressID); err != nil {
		return s.referenceError(err, "delivery address not found", "load delivery address")
	}
	if _, err := s.paymentMethods.FindOwned(ctx, userID, req.PaymentMethodID); err != nil {
		return s.referenceError(err, "payment method not found", "load payment method")
	}
	return nil
}

func (s *service) referenceError(err error, notFound, op string) error {
	if db.IsNotFound(err) {
		s.reject(metrics.RejectReference)
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// validateLines is the read-only phase: every line must name an existing,
// active product with enough stock, or the whole order is refused.
func (s *service) validateLines(ctx context.Context, items []LineRequest) ([]pricedLine, error) {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	lines := make([]pricedLine, len(items))
	for i, item := range items {
		p, ok := found[item.ProductID]
		switch {
		case !ok:
			return nil, s.unavailable(LineRejection{Line: i, ProductID: item.ProductID, Reason: reasonNotFound, Requested: item.Quantity})
		case !p.IsActive:
			return nil, s.unavailable(LineRejection{Line: i, ProductID: item.ProductID, Reason: reasonInactive, Requested: item.Quantity})
		case p.Quantity < item.Quantity:
			available := p.Quantity
			return nil, s.unavailable(LineRejection{
				Line:      i,
				ProductID: item.ProductID,
				Reason:    reasonInsufficientStock,
				Requested: item.Quantity,
				Available: &available,
			})
		}
		lines[i] = pricedLine{productID: p.ID, quantity: item.Quantity, price: p.Price}
	}
	return lines, nil
}

func (s *service) unavailable(rejection LineRejection) error {
	reason := metrics.RejectProductUnavailable
	if rejection.Reason == reasonInsufficientStock {
		reason = metrics.RejectInsufficientStock
	}
	s.reject(reason)
	return pkgerrors.Newf(pkgerrors.CodeValidation, "product unavailable: %s", rejection.Reason).
		WithDetails(rejection)
}

// stockChanged reports a line whose guarded decrement matched no row because
// a concurrent order took the stock after validation.
func stockChanged(i int, line pricedLine) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "product unavailable: insufficient_stock").
		WithDetails(LineRejection{Line: i, ProductID: line.productID, Reason: reasonInsufficientStock, Requested: line.quantity})
}

func (s *service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.Rejected(reason)
	}
}
