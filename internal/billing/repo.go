package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
)

// Repository reads the order rows that feed revenue reports.
type Repository interface {
	CompletedOrderTotals(ctx context.Context) ([]OrderTotal, error)
}

// OrderTotal is the slice of an order the monthly report needs.
type OrderTotal struct {
	OrderDate   time.Time
	TotalAmount decimal.Decimal
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CompletedOrderTotals(ctx context.Context) ([]OrderTotal, error) {
	var rows []OrderTotal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_date, total_amount").
		Where("status = ?", enums.OrderStatusCompleted).
		Order("order_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
