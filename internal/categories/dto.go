package categories

import "github.com/google/uuid"

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

// SubcategoryRequest creates or moves a subcategory.
type SubcategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=120"`
	OrderIndex int       `json:"order_index" validate:"gte=0"`
}
