package bootstrap

import "github.com/ilumina/storefront-backend/internal/tags"

type categorySeed struct {
	Name          string
	OrderIndex    int
	Subcategories []string
}

var defaultCategories = []categorySeed{
	{Name: "Refeições", OrderIndex: 1, Subcategories: []string{"Tradicional", "Low Carb", "Caldos & Sopas"}},
	{Name: "Cafeteria", OrderIndex: 2, Subcategories: []string{"Café Expresso", "Lanches", "Doces"}},
}

var defaultTags = map[tags.Kind][]string{
	tags.KindIngredient:         {"Arroz", "Feijão", "Frango", "Brócolis", "Cenoura", "Batata"},
	tags.KindDietaryRestriction: {"Vegano", "Vegetariano", "Sem Glúten", "Sem Lactose", "Low Carb"},
}

const tempPasswordLength = 16
