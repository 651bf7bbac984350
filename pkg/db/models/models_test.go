package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
)

func count(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func TestDeletingUserRemovesOwnedRows(t *testing.T) {
	conn := dbtest.Open(t).DB()

	user := &models.User{Username: "cliente@example.com", PasswordHash: "x", Role: enums.UserRoleUser}
	keep := &models.User{Username: "outro@example.com", PasswordHash: "x", Role: enums.UserRoleUser}
	require.NoError(t, conn.Create(user).Error)
	require.NoError(t, conn.Create(keep).Error)

	product := &models.Product{
		Title:     "Salada",
		Price:     decimal.RequireFromString("28.00"),
		CostPrice: decimal.RequireFromString("10.00"),
		Quantity:  5,
		Category:  "Tradicional",
		IsActive:  true,
	}
	require.NoError(t, conn.Create(product).Error)

	addr := &models.Address{UserID: user.ID, Street: "Rua A", City: "Curitiba", State: "PR", ZipCode: "80000-000"}
	require.NoError(t, conn.Create(addr).Error)
	require.NoError(t, conn.Create(&models.Address{UserID: keep.ID, Street: "Rua B", City: "Recife", State: "PE", ZipCode: "50000-000"}).Error)
	method := &models.PaymentMethod{UserID: user.ID, MethodType: "pix"}
	require.NoError(t, conn.Create(method).Error)

	order := &models.Order{
		UserID:            user.ID,
		TotalAmount:       decimal.RequireFromString("56.00"),
		Status:            enums.OrderStatusPending,
		DeliveryAddressID: &addr.ID,
		PaymentMethodID:   &method.ID,
	}
	require.NoError(t, conn.Create(order).Error)
	require.NoError(t, conn.Create(&models.OrderItem{
		OrderID:      order.ID,
		ProductID:    product.ID,
		Quantity:     2,
		PriceAtOrder: decimal.RequireFromString("28.00"),
	}).Error)
	require.NoError(t, conn.Create(&models.Favorite{UserID: user.ID, ProductID: product.ID}).Error)

	require.NoError(t, conn.Delete(&models.User{}, "id = ?", user.ID).Error)

	assert.EqualValues(t, 1, count(t, conn, &models.Address{}))
	assert.EqualValues(t, 0, count(t, conn, &models.PaymentMethod{}))
	assert.EqualValues(t, 0, count(t, conn, &models.Order{}))
	assert.EqualValues(t, 0, count(t, conn, &models.OrderItem{}))
	assert.EqualValues(t, 0, count(t, conn, &models.Favorite{}))
	assert.EqualValues(t, 1, count(t, conn, &models.User{}))
	assert.EqualValues(t, 1, count(t, conn, &models.Product{}))
}

func TestDeletingCategoryRemovesSubcategories(t *testing.T) {
	conn := dbtest.Open(t).DB()

	cat := &models.Category{Name: "Refeições", OrderIndex: 1}
	require.NoError(t, conn.Create(cat).Error)
	require.NoError(t, conn.Create(&models.Subcategory{CategoryID: cat.ID, Name: "Tradicional"}).Error)

	require.NoError(t, conn.Delete(&models.Category{}, "id = ?", cat.ID).Error)
	assert.EqualValues(t, 0, count(t, conn, &models.Subcategory{}))
}
