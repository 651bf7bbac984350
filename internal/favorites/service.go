package favorites

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	product "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/pkg/db"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo        *Repository
	ProductRepo *product.Repository
}

// Service exposes the rules for a user's favorite products.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]FavoriteDTO, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("favorites repo is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repo is required")
	}
	return &service{repo: params.Repo, productRepo: params.ProductRepo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]FavoriteDTO, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return rows, nil
}

// Add only accepts products that are currently sold.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !p.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product already in favorites")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "favorite not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}
