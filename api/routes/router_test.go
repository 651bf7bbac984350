package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilumina/storefront-backend/api/routes"
	"github.com/ilumina/storefront-backend/internal/address"
	"github.com/ilumina/storefront-backend/internal/auth"
	"github.com/ilumina/storefront-backend/internal/billing"
	"github.com/ilumina/storefront-backend/internal/categories"
	"github.com/ilumina/storefront-backend/internal/checkout"
	"github.com/ilumina/storefront-backend/internal/orders"
	"github.com/ilumina/storefront-backend/internal/paymentmethods"
	product "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/internal/users"
	pkgauth "github.com/ilumina/storefront-backend/pkg/auth"
	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/enums"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/metrics"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "storefront", ExpirationMinutes: 60},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Media: config.MediaConfig{UploadDir: t.TempDir(), PublicPrefix: "/uploads", MaxUploadMB: 1},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	logg := logger.Nop()
	client := dbtest.Open(t)
	conn := client.DB()
	registry := prometheus.NewRegistry()

	userRepo := users.NewRepository(conn)
	tagRepo := tags.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	addressRepo := address.NewRepository(conn)
	paymentRepo := paymentmethods.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	tagService, err := tags.NewService(tagRepo)
	require.NoError(t, err)

	deps := routes.Dependencies{
		DB:          client,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Tags:        tagService,
	}
	deps.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
		Password:  cfg.Password,
		Logger:    logg,
	})
	require.NoError(t, err)
	deps.Addresses, err = address.NewService(addressRepo)
	require.NoError(t, err)
	deps.PaymentMethods, err = paymentmethods.NewService(paymentRepo)
	require.NoError(t, err)
	deps.Products, err = product.NewService(productRepo, tagRepo, tagService, client)
	require.NoError(t, err)
	deps.Categories, err = categories.NewService(categoryRepo, client)
	require.NoError(t, err)
	deps.Checkout, err = checkout.NewService(checkout.ServiceParams{
		Tx:             client,
		ProductRepo:    productRepo,
		OrdersRepo:     ordersRepo,
		Addresses:      addressRepo,
		PaymentMethods: paymentRepo,
		Metrics:        metrics.NewOrderMetrics(registry),
		Logger:         logg,
	})
	require.NoError(t, err)
	deps.Orders, err = orders.NewService(ordersRepo, logg)
	require.NoError(t, err)
	deps.Billing, err = billing.NewService(billing.NewRepository(conn))
	require.NoError(t, err)

	return routes.NewRouter(cfg, logg, deps), cfg
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "admin",
		Role:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	return token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func TestHealthLive(t *testing.T) {
	h, _ := newTestRouter(t)

	status, env := call(t, h, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, status)
	var body map[string]string
	decodeData(t, env, &body)
	assert.Equal(t, "live", body["status"])

	status, _ = call(t, h, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAccessControl(t *testing.T) {
	h, cfg := newTestRouter(t)

	status, env := call(t, h, http.MethodGet, "/api/user/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	userToken, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "cliente",
		Role:     enums.UserRoleUser,
	})
	require.NoError(t, err)

	status, _ = call(t, h, http.MethodGet, "/api/admin/products", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, h, http.MethodGet, "/api/admin/products", adminToken(t, cfg), nil)
	assert.Equal(t, http.StatusOK, status)

	expired, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().Add(-2*time.Hour), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "cliente",
		Role:     enums.UserRoleUser,
	})
	require.NoError(t, err)
	status, _ = call(t, h, http.MethodGet, "/api/user/orders", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogToOrderFlow(t *testing.T) {
	h, cfg := newTestRouter(t)
	admin := adminToken(t, cfg)

	status, env := call(t, h, http.MethodPost, "/api/admin/categories", admin, map[string]any{"name": "Refeições"})
	require.Equal(t, http.StatusCreated, status)
	var category struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, env, &category)

	status, _ = call(t, h, http.MethodPost, "/api/admin/categories/subcategories", admin, map[string]any{
		"category_id": category.ID,
		"name":        "Tradicional",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env = call(t, h, http.MethodPost, "/api/admin/products", admin, map[string]any{
		"title":                "Salada",
		"price":                "28.00",
		"cost_price":           "12.00",
		"quantity":             5,
		"category":             "Refeições - Tradicional",
		"ingredients":          []string{"Alface", "Tomate"},
		"dietary_restrictions": []string{"Vegano"},
	})
	require.Equal(t, http.StatusCreated, status)
	var salad product.ProductDTO
	decodeData(t, env, &salad)
	require.Len(t, salad.Ingredients, 2)

	status, env = call(t, h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "cliente",
		"password": "segredo-forte",
	})
	require.Equal(t, http.StatusCreated, status)
	var session auth.TokenResponse
	decodeData(t, env, &session)
	require.NotEmpty(t, session.AccessToken)
	user := session.AccessToken

	status, env = call(t, h, http.MethodPost, "/api/user/addresses", user, map[string]any{
		"street":   "Rua das Flores",
		"city":     "Curitiba",
		"state":    "PR",
		"zip_code": "80000-000",
	})
	require.Equal(t, http.StatusCreated, status)
	var addr struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, env, &addr)

	status, env = call(t, h, http.MethodPost, "/api/user/payment-methods", user, map[string]any{
		"method_type":      "credit_card",
		"last_four_digits": "4242",
	})
	require.Equal(t, http.StatusCreated, status)
	var pm struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, env, &pm)

	order := map[string]any{
		"items":               []map[string]any{{"product_id": salad.ID, "quantity": 3}},
		"delivery_address_id": addr.ID,
		"payment_method_id":   pm.ID,
	}
	status, env = call(t, h, http.MethodPost, "/api/user/orders", user, order)
	require.Equal(t, http.StatusCreated, status)
	var placed checkout.PlacementResult
	decodeData(t, env, &placed)
	assert.True(t, decimal.RequireFromString("84.00").Equal(placed.TotalAmount))
	assert.Equal(t, enums.OrderStatusPending, placed.Status)

	status, env = call(t, h, http.MethodGet, "/api/admin/products/"+salad.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, status)
	var reloaded product.ProductDTO
	decodeData(t, env, &reloaded)
	assert.Equal(t, 2, reloaded.Quantity)

	status, env = call(t, h, http.MethodPost, "/api/user/orders", user, order)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = call(t, h, http.MethodGet, "/api/user/orders", user, nil)
	require.Equal(t, http.StatusOK, status)
	var mine []map[string]any
	decodeData(t, env, &mine)
	assert.Len(t, mine, 1)

	status, _ = call(t, h, http.MethodGet, "/api/products/public/"+salad.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, status)
}
