package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
)

// OrderDTO is the order header returned on every order route.
type OrderDTO struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	OrderDate         time.Time         `json:"order_date"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	Status            enums.OrderStatus `json:"status"`
	DeliveryAddressID *uuid.UUID        `json:"delivery_address_id"`
	PaymentMethodID   *uuid.UUID        `json:"payment_method_id"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// OrderItemDTO is a line with the captured price and the current product label.
type OrderItemDTO struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Title        string          `json:"title"`
	PhotoURL     *string         `json:"photo_url"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderDetailDTO is what a customer sees for one of their orders.
type OrderDetailDTO struct {
	OrderDTO
	Items []OrderItemDTO `json:"items"`
}

// AdminOrderDTO adds the customer's username.
type AdminOrderDTO struct {
	OrderDTO
	Username string `json:"username"`
}

// AdminOrderList is one page of the back-office order list.
type AdminOrderList struct {
	Orders     []AdminOrderDTO `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// AdminOrderDetailDTO resolves the delivery and payment references.
type AdminOrderDetailDTO struct {
	AdminOrderDTO
	Items           []OrderItemDTO        `json:"items"`
	DeliveryAddress *models.Address       `json:"delivery_address"`
	PaymentMethod   *models.PaymentMethod `json:"payment_method"`
}

// UpdateStatusRequest is the admin status change body.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// NewOrderDTO maps the persisted order header.
func NewOrderDTO(o *models.Order) OrderDTO {
	return OrderDTO{
		ID:                o.ID,
		UserID:            o.UserID,
		OrderDate:         o.OrderDate,
		TotalAmount:       o.TotalAmount,
		Status:            o.Status,
		DeliveryAddressID: o.DeliveryAddressID,
		PaymentMethodID:   o.PaymentMethodID,
		UpdatedAt:         o.UpdatedAt,
	}
}
