package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilumina/storefront-backend/api/controllers"
	"github.com/ilumina/storefront-backend/api/middleware"
	"github.com/ilumina/storefront-backend/internal/address"
	"github.com/ilumina/storefront-backend/internal/auth"
	"github.com/ilumina/storefront-backend/internal/billing"
	"github.com/ilumina/storefront-backend/internal/categories"
	"github.com/ilumina/storefront-backend/internal/checkout"
	"github.com/ilumina/storefront-backend/internal/favorites"
	"github.com/ilumina/storefront-backend/internal/images"
	"github.com/ilumina/storefront-backend/internal/orders"
	"github.com/ilumina/storefront-backend/internal/paymentmethods"
	products "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/internal/promotions"
	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/internal/users"
	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/enums"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/metrics"
)

// RateLimitStore backs the auth rate limiter; nil disables limiting.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	WindowRemaining(ctx context.Context, scope string) (time.Duration, error)
}

// Dependencies is everything the HTTP surface is wired to.
type Dependencies struct {
	DB             controllers.Pinger
	Redis          controllers.Pinger
	RateLimiter    RateLimitStore
	Gatherer       prometheus.Gatherer
	HTTPMetrics    *metrics.HTTPMetrics
	Auth           auth.Service
	Users          users.Service
	Addresses      address.Service
	PaymentMethods paymentmethods.Service
	Products       products.Service
	Tags           tags.Service
	Categories     categories.Service
	Promotions     promotions.Service
	Images         images.Service
	Favorites      favorites.Service
	Checkout       checkout.Service
	Orders         orders.Service
	Billing        billing.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	limiter := deps.RateLimiter

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessDeps(deps), logg))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	prefix := "/" + strings.Trim(cfg.Media.PublicPrefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.Media.UploadDir))))

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(logg))
	})

	r.Get("/api/products/public", controllers.PublicProductList(deps.Products, logg))
	r.Get("/api/products/public/{id}", controllers.PublicProductGet(deps.Products, logg))
	r.Get("/api/promotions/public", controllers.PublicPromotionList(deps.Promotions, logg))
	r.Get("/api/promotions/public/{id}", controllers.PublicPromotionGet(deps.Promotions, logg))
	r.Get("/api/categories", controllers.CategoryList(deps.Categories, logg))

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/profile", controllers.UserProfile(deps.Users, logg))
		r.Put("/profile", controllers.UserUpdateProfile(deps.Users, logg))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(deps.Addresses, logg))
			r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
			r.Put("/{id}", controllers.AddressUpdate(deps.Addresses, logg))
			r.Delete("/{id}", controllers.AddressDelete(deps.Addresses, logg))
		})
		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", controllers.PaymentMethodList(deps.PaymentMethods, logg))
			r.Post("/", controllers.PaymentMethodCreate(deps.PaymentMethods, logg))
			r.Delete("/{id}", controllers.PaymentMethodDelete(deps.PaymentMethods, logg))
		})
		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoriteList(deps.Favorites, logg))
			r.Post("/{productID}", controllers.FavoriteAdd(deps.Favorites, logg))
			r.Delete("/{productID}", controllers.FavoriteRemove(deps.Favorites, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Post("/", controllers.OrderPlace(deps.Checkout, logg))
			r.Get("/{id}", controllers.OrderDetail(deps.Orders, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.Products, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Get("/{id}", controllers.AdminProductGet(deps.Products, logg))
			r.Put("/{id}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Delete("/{id}", controllers.AdminProductDelete(deps.Products, logg))
			r.Patch("/{id}/toggle-active", controllers.AdminProductToggleActive(deps.Products, logg))
		})

		r.Get("/ingredients", controllers.TagList(deps.Tags, tags.KindIngredient, logg))
		r.Post("/ingredients", controllers.TagCreate(deps.Tags, tags.KindIngredient, logg))
		r.Get("/dietary-restrictions", controllers.TagList(deps.Tags, tags.KindDietaryRestriction, logg))
		r.Post("/dietary-restrictions", controllers.TagCreate(deps.Tags, tags.KindDietaryRestriction, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Categories, logg))
			r.Post("/", controllers.CategoryCreate(deps.Categories, logg))
			r.Post("/subcategories", controllers.SubcategoryCreate(deps.Categories, logg))
			r.Put("/subcategories/{id}", controllers.SubcategoryUpdate(deps.Categories, logg))
			r.Delete("/subcategories/{id}", controllers.SubcategoryDelete(deps.Categories, logg))
			r.Put("/{id}", controllers.CategoryUpdate(deps.Categories, logg))
			r.Delete("/{id}", controllers.CategoryDelete(deps.Categories, logg))
		})

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", controllers.AdminPromotionList(deps.Promotions, logg))
			r.Post("/", controllers.AdminPromotionCreate(deps.Promotions, logg))
			r.Get("/{id}", controllers.AdminPromotionGet(deps.Promotions, logg))
			r.Put("/{id}", controllers.AdminPromotionUpdate(deps.Promotions, logg))
			r.Delete("/{id}", controllers.AdminPromotionDelete(deps.Promotions, logg))
			r.Patch("/{id}/toggle-active", controllers.AdminPromotionToggleActive(deps.Promotions, logg))
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/", controllers.AdminImageList(deps.Images, logg))
			r.Post("/upload", controllers.AdminImageUpload(deps.Images, cfg.Media.MaxUploadBytes(), logg))
			r.Delete("/{id}", controllers.AdminImageDelete(deps.Images, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/billing/monthly", controllers.AdminMonthlyBilling(deps.Billing, logg))
			r.Get("/{id}", controllers.AdminOrderDetail(deps.Orders, logg))
			r.Patch("/{id}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
		})
	})

	return r
}

func readinessDeps(deps Dependencies) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
