package promotions

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// List returns promotions newest first.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Promotion, error) {
	q := r.db.WithContext(ctx).Model(&models.Promotion{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Promotion
	if err := q.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var p models.Promotion
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Promotion) error {
	return r.db.WithContext(ctx).Omit("Products").Create(p).Error
}

func (r *Repository) Save(ctx context.Context, p *models.Promotion) error {
	return r.db.WithContext(ctx).Omit("Products").Save(p).Error
}

// ReplaceProducts deletes every entry of the promotion and inserts rows.
func (r *Repository) ReplaceProducts(ctx context.Context, promotionID uuid.UUID, rows []models.PromotionProduct) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("promotion_id = ?", promotionID).Delete(&models.PromotionProduct{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return conn.Create(&rows).Error
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Promotion{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("promotion_id = ?", id).Delete(&models.PromotionProduct{}).Error; err != nil {
		return err
	}
	res := conn.Where("id = ?", id).Delete(&models.Promotion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProductEntry is a promotion_products row joined with its product.
type ProductEntry struct {
	ProductID           uuid.UUID
	QuantityInPromotion int
	Title               string
	Price               decimal.Decimal
	CostPrice           decimal.Decimal
	PhotoURL            *string
}

// Products loads the promotion entries joined with their products, by title.
func (r *Repository) Products(ctx context.Context, promotionID uuid.UUID) ([]ProductEntry, error) {
	var rows []ProductEntry
	err := r.db.WithContext(ctx).
		Table("promotion_products AS pp").
		Select("pp.product_id, pp.quantity_in_promotion, p.title, p.price, p.cost_price, p.photo_url").
		Joins("JOIN products p ON p.id = pp.product_id").
		Where("pp.promotion_id = ?", promotionID).
		Order("p.title ASC").
		Scan(&rows).Error
	return rows, err
}

// ExistingProductIDs returns which of ids are present in the catalog.
func (r *Repository) ExistingProductIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	out := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		out[id] = struct{}{}
	}
	return out, nil
}
