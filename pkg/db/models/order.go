package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/enums"
)

// Order is append-only after creation except for Status.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	OrderDate         time.Time         `gorm:"column:order_date;not null;index"`
	TotalAmount       decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status            enums.OrderStatus `gorm:"column:status;not null;default:'pending';index"`
	DeliveryAddressID *uuid.UUID        `gorm:"column:delivery_address_id;type:uuid"`
	PaymentMethodID   *uuid.UUID        `gorm:"column:payment_method_id;type:uuid"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	return nil
}

// OrderItem snapshots the unit price at purchase time. Rows are never updated.
type OrderItem struct {
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	Position     int             `gorm:"column:position;not null;default:0"`
	Quantity     int             `gorm:"column:quantity;not null"`
	PriceAtOrder decimal.Decimal `gorm:"column:price_at_order;type:numeric(12,2);not null"`
}

// LineTotal is quantity times the captured unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
