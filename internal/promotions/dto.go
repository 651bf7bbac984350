package promotions

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ilumina/storefront-backend/pkg/db/models"
)

const dateLayout = "2006-01-02"

// PromotionRequest is the create/update payload. Products are fully replaced on update.
type PromotionRequest struct {
	Title              string                    `json:"title" validate:"required,max=255"`
	Description        *string                   `json:"description" validate:"omitempty,max=4000"`
	DiscountPercentage *decimal.Decimal          `json:"discount_percentage" validate:"omitempty,gt=0,lte=100"`
	DiscountAmount     *decimal.Decimal          `json:"discount_amount" validate:"omitempty,gt=0"`
	StartDate          *string                   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate            *string                   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PhotoURL           *string                   `json:"photo_url" validate:"omitempty,max=2048"`
	IsActive           *bool                     `json:"is_active"`
	Products           []PromotionProductRequest `json:"products" validate:"omitempty,dive"`
}

// PromotionProductRequest binds a product to the promotion. Zero quantity means one.
type PromotionProductRequest struct {
	ProductID           uuid.UUID `json:"product_id" validate:"required"`
	QuantityInPromotion int       `json:"quantity_in_promotion" validate:"gte=0"`
}

// SetActiveRequest is the toggle-active body.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type PromotionDTO struct {
	ID                 uuid.UUID             `json:"id"`
	Title              string                `json:"title"`
	Description        *string               `json:"description"`
	DiscountPercentage *decimal.Decimal      `json:"discount_percentage"`
	DiscountAmount     *decimal.Decimal      `json:"discount_amount"`
	StartDate          *string               `json:"start_date"`
	EndDate            *string               `json:"end_date"`
	PhotoURL           *string               `json:"photo_url"`
	IsActive           bool                  `json:"is_active"`
	Products           []PromotionProductDTO `json:"products,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// PromotionProductDTO joins the promotion entry with the live product row.
type PromotionProductDTO struct {
	ProductID           uuid.UUID        `json:"product_id"`
	QuantityInPromotion int              `json:"quantity_in_promotion"`
	Title               string           `json:"title"`
	Price               decimal.Decimal  `json:"price"`
	CostPrice           *decimal.Decimal `json:"cost_price,omitempty"`
	PhotoURL            *string          `json:"photo_url"`
}

func newPromotionDTO(p *models.Promotion, products []PromotionProductDTO) PromotionDTO {
	return PromotionDTO{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		DiscountPercentage: nullToPtr(p.DiscountPercentage),
		DiscountAmount:     nullToPtr(p.DiscountAmount),
		StartDate:          formatDate(p.StartDate),
		EndDate:            formatDate(p.EndDate),
		PhotoURL:           p.PhotoURL,
		IsActive:           p.IsActive,
		Products:           products,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func nullToPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func ptrToNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

var hundred = decimal.NewFromInt(100)
