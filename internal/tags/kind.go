package tags

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/pkg/db/models"
)

// Kind selects one of the two shared tag vocabularies.
type Kind string

const (
	KindIngredient         Kind = "ingredient"
	KindDietaryRestriction Kind = "dietary_restriction"
)

// Tag is the transport shape shared by both vocabularies.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (k Kind) IsValid() bool {
	return k == KindIngredient || k == KindDietaryRestriction
}

func (k Kind) table() string {
	if k == KindIngredient {
		return "ingredients"
	}
	return "dietary_restrictions"
}

func (k Kind) joinTable() string {
	if k == KindIngredient {
		return "product_ingredients"
	}
	return "product_dietary_restrictions"
}

func (k Kind) joinColumn() string {
	if k == KindIngredient {
		return "ingredient_id"
	}
	return "restriction_id"
}

func (k Kind) label() string {
	if k == KindIngredient {
		return "ingredient"
	}
	return "dietary restriction"
}

// newModel returns the gorm model used to insert a tag of this kind.
func (k Kind) newModel(name string) (any, func() uuid.UUID) {
	if k == KindIngredient {
		m := &models.Ingredient{Name: name}
		return m, func() uuid.UUID { return m.ID }
	}
	m := &models.DietaryRestriction{Name: name}
	return m, func() uuid.UUID { return m.ID }
}

// joinRow builds the join-table row linking productID to tagID.
func (k Kind) joinRow(productID, tagID uuid.UUID) any {
	if k == KindIngredient {
		return &models.ProductIngredient{ProductID: productID, IngredientID: tagID}
	}
	return &models.ProductDietaryRestriction{ProductID: productID, RestrictionID: tagID}
}

func mustKind(k Kind) error {
	if !k.IsValid() {
		return fmt.Errorf("unknown tag kind %q", k)
	}
	return nil
}
