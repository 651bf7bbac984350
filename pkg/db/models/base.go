package models

import "github.com/google/uuid"

// assignID fills a zero primary key before insert. Postgres also defaults
// ids server-side, but sqlite has no uuid generator.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&PaymentMethod{},
		&Category{},
		&Subcategory{},
		&Ingredient{},
		&DietaryRestriction{},
		&Product{},
		&ProductIngredient{},
		&ProductDietaryRestriction{},
		&Promotion{},
		&PromotionProduct{},
		&Image{},
		&Order{},
		&OrderItem{},
		&Favorite{},
	}
}
