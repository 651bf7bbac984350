package paymentmethods

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// Service manages the caller's saved payment methods.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.PaymentMethod, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment method repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.PaymentMethod, error) {
	pm := req.toModel()
	if pm.MethodType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "method_type is required")
	}
	pm.UserID = userID
	if err := s.repo.Create(ctx, pm); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment method")
	}
	return pm, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, userID, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment method not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment method")
	}
	return nil
}
