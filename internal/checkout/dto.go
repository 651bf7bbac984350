package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ilumina/storefront-backend/pkg/enums"
)

// PlaceOrderRequest is the cart submitted by an authenticated user.
type PlaceOrderRequest struct {
	Items             []LineRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddressID uuid.UUID     `json:"delivery_address_id" validate:"required"`
	PaymentMethodID   uuid.UUID     `json:"payment_method_id" validate:"required"`
}

// LineRequest is one product/quantity pair of the cart.
type LineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PlacementResult is returned once the order is durably committed.
type PlacementResult struct {
	OrderID     uuid.UUID         `json:"order_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Status      enums.OrderStatus `json:"status"`
	OrderDate   time.Time         `json:"order_date"`
}

// LineRejection describes why a cart line cannot be fulfilled.
type LineRejection struct {
	Line      int       `json:"line"`
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
	Requested int       `json:"requested,omitempty"`
	Available *int      `json:"available,omitempty"`
}

const (
	reasonNotFound          = "not_found"
	reasonInactive          = "inactive"
	reasonInsufficientStock = "insufficient_stock"
)
