package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/types"
)

// ProductRequest is the admin create/update payload. Update replaces every
// field, including both tag lists; an omitted list clears the associations.
type ProductRequest struct {
	ProductCode         *string               `json:"product_code" validate:"omitempty,max=64"`
	Title               string                `json:"title" validate:"required,max=255"`
	Description         *string               `json:"description" validate:"omitempty,max=4000"`
	Price               *decimal.Decimal      `json:"price" validate:"required,gte=0"`
	CostPrice           *decimal.Decimal      `json:"cost_price" validate:"required,gte=0"`
	PhotoURL            *string               `json:"photo_url" validate:"omitempty,max=2048"`
	Quantity            *int                  `json:"quantity" validate:"required,gte=0"`
	Category            string                `json:"category" validate:"required,max=255"`
	NutritionalInfo     types.NutritionalInfo `json:"nutritional_info"`
	Ingredients         []string              `json:"ingredients" validate:"omitempty,dive,max=100"`
	DietaryRestrictions []string              `json:"dietary_restrictions" validate:"omitempty,dive,max=100"`
	IsActive            *bool                 `json:"is_active"`
}

// SetActiveRequest flips a product or promotion on or off.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ListFilter narrows product listings. Category matches the label exactly.
type ListFilter struct {
	Category   string
	ActiveOnly bool
}

// ProductDTO is the product payload. CostPrice is omitted on public routes.
type ProductDTO struct {
	ID                  uuid.UUID             `json:"id"`
	ProductCode         *string               `json:"product_code"`
	Title               string                `json:"title"`
	Description         *string               `json:"description"`
	Price               decimal.Decimal       `json:"price"`
	CostPrice           *decimal.Decimal      `json:"cost_price,omitempty"`
	PhotoURL            *string               `json:"photo_url"`
	Quantity            int                   `json:"quantity"`
	Category            string                `json:"category"`
	NutritionalInfo     types.NutritionalInfo `json:"nutritional_info"`
	Ingredients         []tags.Tag            `json:"ingredients"`
	DietaryRestrictions []tags.Tag            `json:"dietary_restrictions"`
	IsActive            bool                  `json:"is_active"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// NewProductDTO builds the admin view of a product and its tags.
func NewProductDTO(p *models.Product, ingredients, restrictions []tags.Tag) ProductDTO {
	cost := p.CostPrice
	info := p.NutritionalInfo
	if info == nil {
		info = types.NutritionalInfo{}
	}
	if ingredients == nil {
		ingredients = []tags.Tag{}
	}
	if restrictions == nil {
		restrictions = []tags.Tag{}
	}
	return ProductDTO{
		ID:                  p.ID,
		ProductCode:         p.ProductCode,
		Title:               p.Title,
		Description:         p.Description,
		Price:               p.Price,
		CostPrice:           &cost,
		PhotoURL:            p.PhotoURL,
		Quantity:            p.Quantity,
		Category:            p.Category,
		NutritionalInfo:     info,
		Ingredients:         ingredients,
		DietaryRestrictions: restrictions,
		IsActive:            p.IsActive,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// Public strips fields reserved for the back office.
func (d ProductDTO) Public() ProductDTO {
	d.CostPrice = nil
	return d
}

func (r ProductRequest) apply(p *models.Product) {
	p.ProductCode = trimmedOrNil(r.ProductCode)
	p.Title = strings.TrimSpace(r.Title)
	p.Description = trimmedOrNil(r.Description)
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.CostPrice != nil {
		p.CostPrice = *r.CostPrice
	}
	p.PhotoURL = trimmedOrNil(r.PhotoURL)
	if r.Quantity != nil {
		p.Quantity = *r.Quantity
	}
	p.Category = strings.TrimSpace(r.Category)
	p.NutritionalInfo = r.NutritionalInfo
	if p.NutritionalInfo == nil {
		p.NutritionalInfo = types.NutritionalInfo{}
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
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
