package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/enums"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/pagination"
)

// Service serves order reads and the admin status change. Placement lives in
// the checkout package.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetailDTO, error)
	ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error)
	GetAdmin(ctx context.Context, orderID uuid.UUID) (*AdminOrderDetailDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, len(rows))
	for i := range rows {
		out[i] = NewOrderDTO(&rows[i])
	}
	return out, nil
}

// GetForUser reports another user's order as missing.
func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetailDTO, error) {
	order, err := s.repo.FindOwned(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	items, err := s.repo.Items(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	return &OrderDetailDTO{OrderDTO: NewOrderDTO(order), Items: items}, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*AdminOrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListAll(ctx, pagination.LimitWithBuffer(limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	out := &AdminOrderList{Orders: rows}
	if len(rows) > limit {
		out.Orders = rows[:limit]
		last := out.Orders[limit-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.OrderDate, ID: last.ID})
	}
	return out, nil
}

func (s *service) GetAdmin(ctx context.Context, orderID uuid.UUID) (*AdminOrderDetailDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	username, err := s.repo.Username(ctx, order.UserID)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order owner")
	}
	items, err := s.repo.Items(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	address, err := s.repo.Address(ctx, order.DeliveryAddressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery address")
	}
	method, err := s.repo.PaymentMethod(ctx, order.PaymentMethodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	return &AdminOrderDetailDTO{
		AdminOrderDTO:   AdminOrderDTO{OrderDTO: NewOrderDTO(order), Username: username},
		Items:           items,
		DeliveryAddress: address,
		PaymentMethod:   method,
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, raw string) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"allowed": enums.OrderStatusValues()})
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, notFoundOr(err, "update order status")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
		"status":   status.String(),
	}), "order status updated")
	dto := NewOrderDTO(order)
	return &dto, nil
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
