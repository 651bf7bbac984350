package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
	"github.com/ilumina/storefront-backend/pkg/pagination"
)

// Repository reads and writes the order ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

type itemRow struct {
	ProductID    uuid.UUID
	Title        *string
	PhotoURL     *string
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// Items returns the order lines in placement order.
func (r *Repository) Items(ctx context.Context, orderID uuid.UUID) ([]OrderItemDTO, error) {
	var rows []itemRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id, p.title, p.photo_url, oi.quantity, oi.price_at_order").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]OrderItemDTO, len(rows))
	for i, row := range rows {
		item := models.OrderItem{Quantity: row.Quantity, PriceAtOrder: row.PriceAtOrder}
		out[i] = OrderItemDTO{
			ProductID:    row.ProductID,
			PhotoURL:     row.PhotoURL,
			Quantity:     row.Quantity,
			PriceAtOrder: row.PriceAtOrder,
			LineTotal:    item.LineTotal(),
		}
		if row.Title != nil {
			out[i].Title = *row.Title
		}
	}
	return out, nil
}

type adminRow struct {
	models.Order
	Username string
}

// ListAll pages through every order by (order_date DESC, id DESC).
func (r *Repository) ListAll(ctx context.Context, limit int, cursor *pagination.Cursor) ([]AdminOrderDTO, error) {
	q := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.*, u.username").
		Joins("JOIN users u ON u.id = o.user_id")
	if cursor != nil {
		q = q.Where("o.order_date < ? OR (o.order_date = ? AND o.id < ?)", cursor.At, cursor.At, cursor.ID)
	}
	var rows []adminRow
	if err := q.Order("o.order_date DESC").Order("o.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]AdminOrderDTO, len(rows))
	for i := range rows {
		out[i] = AdminOrderDTO{OrderDTO: NewOrderDTO(&rows[i].Order), Username: rows[i].Username}
	}
	return out, nil
}

// Username resolves the owner of an order.
func (r *Repository) Username(ctx context.Context, userID uuid.UUID) (string, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Select("username").First(&u, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return u.Username, nil
}

// Address loads an address by id regardless of owner, nil when it is gone.
func (r *Repository) Address(ctx context.Context, id *uuid.UUID) (*models.Address, error) {
	if id == nil {
		return nil, nil
	}
	var rows []models.Address
	if err := r.db.WithContext(ctx).Where("id = ?", *id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// PaymentMethod loads a payment method by id regardless of owner, nil when it is gone.
func (r *Repository) PaymentMethod(ctx context.Context, id *uuid.UUID) (*models.PaymentMethod, error) {
	if id == nil {
		return nil, nil
	}
	var rows []models.PaymentMethod
	if err := r.db.WithContext(ctx).Where("id = ?", *id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateStatus changes the only mutable order column.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
