package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/internal/address"
	"github.com/ilumina/storefront-backend/internal/orders"
	"github.com/ilumina/storefront-backend/internal/paymentmethods"
	product "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	"github.com/ilumina/storefront-backend/pkg/enums"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/metrics"
)

type fixture struct {
	svc       Service
	conn      *gorm.DB
	userID    uuid.UUID
	addressID uuid.UUID
	methodID  uuid.UUID
	reg       *prometheus.Registry
}

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()

	user := &models.User{Username: "cliente@example.com", PasswordHash: "x", Role: enums.UserRoleUser}
	require.NoError(t, conn.Create(user).Error)
	addr := &models.Address{UserID: user.ID, Street: "Rua A", City: "Curitiba", State: "PR", ZipCode: "80000-000"}
	require.NoError(t, conn.Create(addr).Error)
	method := &models.PaymentMethod{UserID: user.ID, MethodType: "pix"}
	require.NoError(t, conn.Create(method).Error)

	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Tx:             client,
		ProductRepo:    product.NewRepository(conn),
		OrdersRepo:     orders.NewRepository(conn),
		Addresses:      address.NewRepository(conn),
		PaymentMethods: paymentmethods.NewRepository(conn),
		Metrics:        metrics.NewOrderMetrics(reg),
		Logger:         logger.Nop(),
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, userID: user.ID, addressID: addr.ID, methodID: method.ID, reg: reg}
}

func (f *fixture) product(t *testing.T, title, price string, qty int, active bool) uuid.UUID {
	t.Helper()
	p := &models.Product{
		Title:     title,
		Price:     decimal.RequireFromString(price),
		CostPrice: decimal.RequireFromString("1.00"),
		Quantity:  qty,
		Category:  "Tradicional",
		IsActive:  true,
	}
	require.NoError(t, f.conn.Create(p).Error)
	if !active {
		require.NoError(t, f.conn.Model(p).Update("is_active", false).Error)
	}
	return p.ID
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.conn.First(&p, "id = ?", id).Error)
	return p.Quantity
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) request(lines ...LineRequest) PlaceOrderRequest {
	return PlaceOrderRequest{Items: lines, DeliveryAddressID: f.addressID, PaymentMethodID: f.methodID}
}

func TestPlaceOrderCommitsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	salada := f.product(t, "Salada", "28.00", 5, true)

	res, err := f.svc.PlaceOrder(ctx, f.userID, f.request(LineRequest{ProductID: salada, Quantity: 3}))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("84.00").Equal(res.TotalAmount))
	assert.Equal(t, enums.OrderStatusPending, res.Status)
	assert.Equal(t, fixedNow, res.OrderDate)
	assert.Equal(t, 2, f.stock(t, salada))

	var items []models.OrderItem
	require.NoError(t, f.conn.Where("order_id = ?", res.OrderID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("28.00").Equal(items[0].PriceAtOrder))

	_, err = f.svc.PlaceOrder(ctx, f.userID, f.request(LineRequest{ProductID: salada, Quantity: 3}))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(LineRejection)
	require.True(t, ok)
	assert.Equal(t, reasonInsufficientStock, details.Reason)
	require.NotNil(t, details.Available)
	assert.Equal(t, 2, *details.Available)
	assert.Equal(t, 2, f.stock(t, salada))
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))

	assert.Equal(t, 1.0, counterValue(t, f.reg, "storefront_orders_placed_total"))
	assert.Equal(t, 84.0, counterValue(t, f.reg, "storefront_orders_placed_amount_total"))
	assert.Equal(t, 1.0, counterValue(t, f.reg, "storefront_orders_rejected_total", "reason", metrics.RejectInsufficientStock))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels ...string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	scan:
		for _, m := range fam.GetMetric() {
			for i, pair := range m.GetLabel() {
				if i*2+1 >= len(labels) || pair.GetName() != labels[i*2] || pair.GetValue() != labels[i*2+1] {
					continue scan
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestPlaceOrderRollsBackOnStorageFailureMidCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	arroz := f.product(t, "Arroz Carreteiro", "30.00", 5, true)
	caldo := f.product(t, "Caldo Verde", "18.50", 5, true)

	decrements := 0
	require.NoError(t, f.conn.Callback().Raw().Before("gorm:raw").Register("test:fail_second_decrement", func(db *gorm.DB) {
		if !strings.HasPrefix(db.Statement.SQL.String(), "UPDATE products SET quantity") {
			return
		}
		decrements++
		if decrements == 2 {
			_ = db.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.svc.PlaceOrder(ctx, f.userID, f.request(
		LineRequest{ProductID: arroz, Quantity: 2},
		LineRequest{ProductID: caldo, Quantity: 2},
	))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.Equal(t, 2, decrements)

	assert.EqualValues(t, 0, f.count(t, &models.Order{}))
	assert.EqualValues(t, 0, f.count(t, &models.OrderItem{}))
	assert.Equal(t, 5, f.stock(t, arroz))
	assert.Equal(t, 5, f.stock(t, caldo))

	assert.Equal(t, 1.0, counterValue(t, f.reg, "storefront_orders_rejected_total", "reason", metrics.RejectCommitFailure))
	assert.Equal(t, 0.0, counterValue(t, f.reg, "storefront_orders_placed_total"))
}

func TestPlaceOrderStockBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exact := f.product(t, "Feijoada", "45.50", 4, true)
	over := f.product(t, "Moqueca", "52.00", 4, true)

	_, err := f.svc.PlaceOrder(ctx, f.userID, f.request(LineRequest{ProductID: exact, Quantity: 4}))
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, exact))

	_, err = f.svc.PlaceOrder(ctx, f.userID, f.request(LineRequest{ProductID: over, Quantity: 5}))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 4, f.stock(t, over))
}

func TestPlaceOrderRejectsWholeCartOnOneBadLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	good := f.product(t, "Salada", "28.00", 10, true)
	inactive := f.product(t, "Sopa", "19.90", 10, false)

	cases := []struct {
		name   string
		line   LineRequest
		reason string
	}{
		{name: "inactive", line: LineRequest{ProductID: inactive, Quantity: 1}, reason: reasonInactive},
		{name: "missing", line: LineRequest{ProductID: uuid.New(), Quantity: 1}, reason: reasonNotFound},
		{name: "insufficient", line: LineRequest{ProductID: good, Quantity: 11}, reason: reasonInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := []LineRequest{{ProductID: good, Quantity: 2}, tc.line}
			if tc.line.ProductID == good {
				lines = []LineRequest{tc.line}
			}
			_, err := f.svc.PlaceOrder(ctx, f.userID, f.request(lines...))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
			details, ok := pkgerrors.As(err).Details().(LineRejection)
			require.True(t, ok)
			assert.Equal(t, tc.reason, details.Reason)
		})
	}

	assert.Equal(t, 10, f.stock(t, good))
	assert.EqualValues(t, 0, f.count(t, &models.Order{}))
	assert.EqualValues(t, 0, f.count(t, &models.OrderItem{}))
}

func TestPlaceOrderInputValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.product(t, "Salada", "28.00", 10, true)

	cases := map[string]PlaceOrderRequest{
		"empty cart":     f.request(),
		"zero quantity":  f.request(LineRequest{ProductID: id, Quantity: 0}),
		"duplicate line": f.request(LineRequest{ProductID: id, Quantity: 1}, LineRequest{ProductID: id, Quantity: 2}),
		"missing refs":   {Items: []LineRequest{{ProductID: id, Quantity: 1}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, f.userID, req)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
	assert.Equal(t, 10, f.stock(t, id))
}

func TestPlaceOrderRequiresOwnedReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.product(t, "Salada", "28.00", 10, true)

	stranger := &models.User{Username: "outro@example.com", PasswordHash: "x", Role: enums.UserRoleUser}
	require.NoError(t, f.conn.Create(stranger).Error)
	foreign := &models.Address{UserID: stranger.ID, Street: "Rua B", City: "Recife", State: "PE", ZipCode: "50000-000"}
	require.NoError(t, f.conn.Create(foreign).Error)

	req := f.request(LineRequest{ProductID: id, Quantity: 1})
	req.DeliveryAddressID = foreign.ID
	_, err := f.svc.PlaceOrder(ctx, f.userID, req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	req = f.request(LineRequest{ProductID: id, Quantity: 1})
	req.PaymentMethodID = uuid.New()
	_, err = f.svc.PlaceOrder(ctx, f.userID, req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	assert.Equal(t, 10, f.stock(t, id))
}

func TestPlaceOrderMultiLineTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Salada", "28.00", 5, true)
	b := f.product(t, "Suco", "7.25", 5, true)

	res, err := f.svc.PlaceOrder(ctx, f.userID, f.request(
		LineRequest{ProductID: a, Quantity: 2},
		LineRequest{ProductID: b, Quantity: 3},
	))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("77.75").Equal(res.TotalAmount))
	assert.Equal(t, 3, f.stock(t, a))
	assert.Equal(t, 2, f.stock(t, b))

	var items []models.OrderItem
	require.NoError(t, f.conn.Where("order_id = ?", res.OrderID).Order("position").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, a, items[0].ProductID)
	assert.Equal(t, b, items[1].ProductID)
}

func TestPlaceOrderConcurrentNeverOversells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.product(t, "Salada", "28.00", 5, true)

	const buyers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(ctx, f.userID, f.request(LineRequest{ProductID: id, Quantity: 1}))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				placed++
				return
			}
			if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, buyers-5, rejected)
	assert.Equal(t, 0, f.stock(t, id))
	assert.EqualValues(t, 5, f.count(t, &models.Order{}))
}
