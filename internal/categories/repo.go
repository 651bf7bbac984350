package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// List returns categories and their subcategories, both by order_index.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_index ASC").Order("name ASC")
		}).
		Order("order_index ASC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) FindSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	var s models.Subcategory
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) FindSubcategoryByName(ctx context.Context, categoryID uuid.UUID, name string) (*models.Subcategory, error) {
	var s models.Subcategory
	if err := r.db.WithContext(ctx).First(&s, "category_id = ? AND name = ?", categoryID, name).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Omit("Subcategories").Create(c).Error
}

func (r *Repository) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Omit("Subcategories").Save(c).Error
}

func (r *Repository) CreateSubcategory(ctx context.Context, s *models.Subcategory) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repository) SaveSubcategory(ctx context.Context, s *models.Subcategory) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// DeleteCategory removes the category and every subcategory under it.
// Products keep their category label.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
		return err
	}
	res := conn.Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Subcategory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
