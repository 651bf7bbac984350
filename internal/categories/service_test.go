package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client.DB()
}

func TestCategoryTreeOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cafe, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Cafeteria", OrderIndex: 2})
	require.NoError(t, err)
	meals, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Refeições", OrderIndex: 1})
	require.NoError(t, err)

	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: meals.ID, Name: "Low Carb", OrderIndex: 2})
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: meals.ID, Name: "Tradicional", OrderIndex: 1})
	require.NoError(t, err)

	tree, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Refeições", tree[0].Name)
	require.Len(t, tree[0].Subcategories, 2)
	assert.Equal(t, "Tradicional", tree[0].Subcategories[0].Name)
	assert.Equal(t, cafe.ID, tree[1].ID)
	assert.NotNil(t, tree[1].Subcategories)
	assert.Empty(t, tree[1].Subcategories)
}

func TestCategoryConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	meals, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Refeições"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryRequest{Name: "Refeições"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: meals.ID, Name: "Tradicional"})
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: meals.ID, Name: "Tradicional"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	cafe, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Cafeteria"})
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: cafe.ID, Name: "Tradicional"})
	assert.NoError(t, err)

	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: uuid.New(), Name: "Doces"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateCategoryAndSubcategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	meals, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Refeicoes"})
	require.NoError(t, err)
	cafe, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Cafeteria"})
	require.NoError(t, err)

	renamed, err := svc.UpdateCategory(ctx, meals.ID, CategoryRequest{Name: "Refeições", OrderIndex: 3})
	require.NoError(t, err)
	assert.Equal(t, "Refeições", renamed.Name)
	assert.Equal(t, 3, renamed.OrderIndex)

	_, err = svc.UpdateCategory(ctx, cafe.ID, CategoryRequest{Name: "Refeições"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	sub, err := svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: meals.ID, Name: "Lanches"})
	require.NoError(t, err)
	moved, err := svc.UpdateSubcategory(ctx, sub.ID, SubcategoryRequest{CategoryID: cafe.ID, Name: "Lanches", OrderIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, cafe.ID, moved.CategoryID)

	_, err = svc.UpdateSubcategory(ctx, uuid.New(), SubcategoryRequest{CategoryID: cafe.ID, Name: "X"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.UpdateCategory(ctx, uuid.New(), CategoryRequest{Name: "X"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.DeleteSubcategory(ctx, sub.ID))
	assert.True(t, pkgerrors.IsCode(svc.DeleteSubcategory(ctx, sub.ID), pkgerrors.CodeNotFound))
}

func TestDeleteCategoryCascadesAndOrphansProducts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	meals, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Refeições", OrderIndex: 1})
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(ctx, SubcategoryRequest{CategoryID: meals.ID, Name: "Tradicional"})
	require.NoError(t, err)

	product := &models.Product{
		Title:     "Salada",
		Price:     decimal.RequireFromString("28.00"),
		CostPrice: decimal.RequireFromString("10.00"),
		Quantity:  5,
		Category:  "Tradicional",
		IsActive:  true,
	}
	require.NoError(t, conn.Create(product).Error)

	require.NoError(t, svc.DeleteCategory(ctx, meals.ID))

	var subs int64
	require.NoError(t, conn.Model(&models.Subcategory{}).Where("category_id = ?", meals.ID).Count(&subs).Error)
	assert.Zero(t, subs)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, "Tradicional", reloaded.Category)

	assert.True(t, pkgerrors.IsCode(svc.DeleteCategory(ctx, meals.ID), pkgerrors.CodeNotFound))
}
