package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db/models"
)

// FavoriteDTO is a favorited product as listed to its owner.
type FavoriteDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PhotoURL    *string         `json:"photo_url"`
	Category    string          `json:"category"`
	IsActive    bool            `json:"is_active"`
	FavoritedAt time.Time       `json:"favorited_at"`
}

// Repository handles persistence for user favorites.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a favorites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the user's favorites, most recent first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]FavoriteDTO, error) {
	rows := []FavoriteDTO{}
	err := r.db.WithContext(ctx).
		Table("user_favorites AS f").
		Select("p.id AS product_id, p.title, p.description, p.price, p.photo_url, p.category, p.is_active, f.created_at AS favorited_at").
		Joins("JOIN products p ON p.id = f.product_id").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC").
		Order("p.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add inserts the favorite; an existing pair surfaces as a unique violation.
func (r *Repository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.Favorite{UserID: userID, ProductID: productID}).Error
}

// Remove deletes the favorite and reports gorm.ErrRecordNotFound when absent.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
