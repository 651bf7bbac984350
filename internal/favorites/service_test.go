package favorites

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

func TestFavoritesLifecycle(t *testing.T) {
	conn := dbtest.Open(t).DB()
	ctx := context.Background()

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), ProductRepo: product.NewRepository(conn)})
	require.NoError(t, err)

	user := &models.User{Username: "fan@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, conn.Create(user).Error)
	active := &models.Product{Title: "Brownie", Price: decimal.RequireFromString("9.90"), Category: "Doces", IsActive: true}
	inactive := &models.Product{Title: "Torta", Price: decimal.RequireFromString("12.00"), Category: "Doces"}
	require.NoError(t, conn.Create(active).Error)
	require.NoError(t, conn.Create(inactive).Error)

	require.NoError(t, svc.Add(ctx, user.ID, active.ID))
	assert.True(t, pkgerrors.IsCode(svc.Add(ctx, user.ID, active.ID), pkgerrors.CodeConflict))
	assert.True(t, pkgerrors.IsCode(svc.Add(ctx, user.ID, inactive.ID), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Add(ctx, user.ID, uuid.New()), pkgerrors.CodeNotFound))

	rows, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Brownie", rows[0].Title)
	assert.True(t, rows[0].Price.Equal(decimal.RequireFromString("9.90")))

	require.NoError(t, svc.Remove(ctx, user.ID, active.ID))
	assert.True(t, pkgerrors.IsCode(svc.Remove(ctx, user.ID, active.ID), pkgerrors.CodeNotFound))

	rows, err = svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
