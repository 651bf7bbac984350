package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

// Service manages the category tree. Products reference subcategories by
// name, so renames and deletes never touch product rows.
type Service interface {
	List(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateSubcategory(ctx context.Context, req SubcategoryRequest) (*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id uuid.UUID, req SubcategoryRequest) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	for i := range rows {
		if rows[i].Subcategories == nil {
			rows[i].Subcategories = []models.Subcategory{}
		}
	}
	return rows, nil
}

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	c := &models.Category{Name: strings.TrimSpace(req.Name), OrderIndex: req.OrderIndex}
	if c.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, categoryWriteError(err, "create category")
	}
	c.Subcategories = []models.Subcategory{}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	c, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category not found", "load category")
	}
	c.Name = name
	c.OrderIndex = req.OrderIndex
	if err := s.repo.SaveCategory(ctx, c); err != nil {
		return nil, categoryWriteError(err, "update category")
	}
	return c, nil
}

// DeleteCategory drops the category and its subcategories in one transaction.
// Products labelled with a removed subcategory are left as they are.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteCategory(ctx, id)
	})
	if err != nil {
		return notFoundOr(err, "category not found", "delete category")
	}
	return nil
}

func (s *service) CreateSubcategory(ctx context.Context, req SubcategoryRequest) (*models.Subcategory, error) {
	sub := &models.Subcategory{CategoryID: req.CategoryID, Name: strings.TrimSpace(req.Name), OrderIndex: req.OrderIndex}
	if err := s.checkSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, subcategoryWriteError(err, "create subcategory")
	}
	return sub, nil
}

func (s *service) UpdateSubcategory(ctx context.Context, id uuid.UUID, req SubcategoryRequest) (*models.Subcategory, error) {
	sub, err := s.repo.FindSubcategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "subcategory not found", "load subcategory")
	}
	sub.CategoryID = req.CategoryID
	sub.Name = strings.TrimSpace(req.Name)
	sub.OrderIndex = req.OrderIndex
	if err := s.checkSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSubcategory(ctx, sub); err != nil {
		return nil, subcategoryWriteError(err, "update subcategory")
	}
	return sub, nil
}

func (s *service) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSubcategory(ctx, id); err != nil {
		return notFoundOr(err, "subcategory not found", "delete subcategory")
	}
	return nil
}

func (s *service) checkSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if sub.CategoryID == uuid.Nil || sub.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id and name are required")
	}
	if _, err := s.repo.FindCategory(ctx, sub.CategoryID); err != nil {
		return notFoundOr(err, "category not found", "load category")
	}
	return nil
}

func notFoundOr(err error, notFound, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func categoryWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func subcategoryWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "subcategory already exists in this category")
	}
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
