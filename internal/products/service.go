package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// Service exposes catalog product management and the public storefront reads.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, req ProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductDTO, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublic(ctx context.Context, category string) ([]ProductDTO, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

type tagResolver interface {
	Resolve(ctx context.Context, kind tags.Kind, names []string) ([]tags.Tag, error)
}

// service implements the product service.
type service struct {
	repo     *Repository
	tagRepo  *tags.Repository
	resolver tagResolver
	dbClient *db.Client
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tagRepo *tags.Repository, resolver tagResolver, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tagRepo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("tag resolver required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, tagRepo: tagRepo, resolver: resolver, dbClient: dbClient}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return s.withTags(ctx, rows)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, product)
}

// Create resolves tag names first, then writes the product and its links in one transaction.
func (s *service) Create(ctx context.Context, req ProductRequest) (*ProductDTO, error) {
	ingredients, restrictions, err := s.resolveTags(ctx, req)
	if err != nil {
		return nil, err
	}

	product := &models.Product{IsActive: true}
	req.apply(product)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		return s.replaceLinks(ctx, tx, product.ID, ingredients, restrictions)
	}); err != nil {
		return nil, writeError(err, "create product")
	}
	return s.Get(ctx, product.ID)
}

// Update overwrites the product and fully replaces both tag sets.
func (s *service) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ingredients, restrictions, err := s.resolveTags(ctx, req)
	if err != nil {
		return nil, err
	}
	req.apply(product)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, product); err != nil {
			return err
		}
		return s.replaceLinks(ctx, tx, product.ID, ingredients, restrictions)
	}); err != nil {
		return nil, writeError(err, "update product")
	}
	return s.Get(ctx, product.ID)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product status")
	}
	return s.Get(ctx, id)
}

// Delete removes the product, its tag links, favorites and promotion entries.
// Products already sold keep their order history and cannot be deleted.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	lines, err := s.repo.CountOrderLines(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order history")
	}
	if lines > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by existing orders").
			WithDetails(map[string]any{"order_items": lines})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		tagRepo := s.tagRepo.WithTx(tx)
		if err := tagRepo.DeleteForProduct(ctx, tags.KindIngredient, id); err != nil {
			return err
		}
		if err := tagRepo.DeleteForProduct(ctx, tags.KindDietaryRestriction, id); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, id)
	}); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is referenced by existing orders")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ListPublic(ctx context.Context, category string) ([]ProductDTO, error) {
	out, err := s.List(ctx, ListFilter{Category: category, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].Public()
	}
	return out, nil
}

func (s *service) GetPublic(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dto.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	public := dto.Public()
	return &public, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) detail(ctx context.Context, product *models.Product) (*ProductDTO, error) {
	out, err := s.withTags(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *service) withTags(ctx context.Context, rows []models.Product) ([]ProductDTO, error) {
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	ingredients, err := s.tagRepo.ForProducts(ctx, tags.KindIngredient, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredients")
	}
	restrictions, err := s.tagRepo.ForProducts(ctx, tags.KindDietaryRestriction, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dietary restrictions")
	}

	out := make([]ProductDTO, len(rows))
	for i := range rows {
		out[i] = NewProductDTO(&rows[i], ingredients[rows[i].ID], restrictions[rows[i].ID])
	}
	return out, nil
}

// resolveTags runs outside any transaction; tag rows created here survive a
// failed product write and are simply reused next time.
func (s *service) resolveTags(ctx context.Context, req ProductRequest) ([]tags.Tag, []tags.Tag, error) {
	ingredients, err := s.resolver.Resolve(ctx, tags.KindIngredient, req.Ingredients)
	if err != nil {
		return nil, nil, err
	}
	restrictions, err := s.resolver.Resolve(ctx, tags.KindDietaryRestriction, req.DietaryRestrictions)
	if err != nil {
		return nil, nil, err
	}
	return ingredients, restrictions, nil
}

func (s *service) replaceLinks(ctx context.Context, tx *gorm.DB, productID uuid.UUID, ingredients, restrictions []tags.Tag) error {
	tagRepo := s.tagRepo.WithTx(tx)
	if err := tagRepo.ReplaceForProduct(ctx, tags.KindIngredient, productID, tagIDs(ingredients)); err != nil {
		return err
	}
	return tagRepo.ReplaceForProduct(ctx, tags.KindDietaryRestriction, productID, tagIDs(restrictions))
}

func tagIDs(in []tags.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, len(in))
	for i, t := range in {
		ids[i] = t.ID
	}
	return ids
}

func writeError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product_code already exists")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
