package address

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// Service manages the caller's delivery addresses. Several rows may carry
// is_default at once; the flag is stored as given.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*models.Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, req AddressRequest) (*models.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	a, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, mapErr(err, "load address")
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*models.Address, error) {
	a := &models.Address{UserID: userID}
	req.apply(a)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, req AddressRequest) (*models.Address, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	req.apply(a)
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, userID, id); err != nil {
		return mapErr(err, "delete address")
	}
	return nil
}

func mapErr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "address not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
