package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ilumina/storefront-backend/api/routes"
	"github.com/ilumina/storefront-backend/internal/address"
	"github.com/ilumina/storefront-backend/internal/auth"
	"github.com/ilumina/storefront-backend/internal/billing"
	"github.com/ilumina/storefront-backend/internal/bootstrap"
	"github.com/ilumina/storefront-backend/internal/categories"
	"github.com/ilumina/storefront-backend/internal/checkout"
	"github.com/ilumina/storefront-backend/internal/favorites"
	"github.com/ilumina/storefront-backend/internal/images"
	"github.com/ilumina/storefront-backend/internal/orders"
	"github.com/ilumina/storefront-backend/internal/paymentmethods"
	product "github.com/ilumina/storefront-backend/internal/products"
	"github.com/ilumina/storefront-backend/internal/promotions"
	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/internal/users"
	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/metrics"
	"github.com/ilumina/storefront-backend/pkg/migrate"
	"github.com/ilumina/storefront-backend/pkg/redis"
	"github.com/ilumina/storefront-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers := []func() error{dbClient.Close}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			_ = dbClient.Close()
			return err
		}
		closers = append(closers, redisClient.Close)
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limiting disabled")
	}
	defer func() {
		var closeErr error
		for _, closeFn := range closers {
			closeErr = multierr.Append(closeErr, closeFn())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	tagRepo := tags.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	addressRepo := address.NewRepository(conn)
	paymentRepo := paymentmethods.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	tagService, err := tags.NewService(tagRepo)
	if err != nil {
		return err
	}

	seeder, err := bootstrap.NewSeeder(bootstrap.Params{
		Users:      userRepo,
		Categories: categoryRepo,
		Tags:       tagService,
		Password:   cfg.Password,
		Admin:      cfg.Bootstrap,
		SeedData:   cfg.FeatureFlags.SeedCatalog,
		Logger:     logg,
	})
	if err != nil {
		return err
	}
	if err := seeder.Run(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := local.New(cfg.Media, logg)
	if err != nil {
		return err
	}

	deps := routes.Dependencies{
		DB:          dbClient,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Tags:        tagService,
	}
	if redisClient != nil {
		deps.Redis = redisClient
		deps.RateLimiter = redisClient
	}

	if deps.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
		Password:  cfg.Password,
		Logger:    logg,
	}); err != nil {
		return err
	}
	if deps.Users, err = users.NewService(users.ServiceParams{Repo: userRepo, Password: cfg.Password}); err != nil {
		return err
	}
	if deps.Addresses, err = address.NewService(addressRepo); err != nil {
		return err
	}
	if deps.PaymentMethods, err = paymentmethods.NewService(paymentRepo); err != nil {
		return err
	}
	if deps.Products, err = product.NewService(productRepo, tagRepo, tagService, dbClient); err != nil {
		return err
	}
	if deps.Categories, err = categories.NewService(categoryRepo, dbClient); err != nil {
		return err
	}
	if deps.Promotions, err = promotions.NewService(promotions.NewRepository(conn), dbClient); err != nil {
		return err
	}
	if deps.Images, err = images.NewService(images.ServiceParams{
		Repo:     images.NewRepository(conn),
		Store:    store,
		Logger:   logg,
		MaxBytes: cfg.Media.MaxUploadBytes(),
	}); err != nil {
		return err
	}
	if deps.Favorites, err = favorites.NewService(favorites.ServiceParams{
		Repo:        favorites.NewRepository(conn),
		ProductRepo: productRepo,
	}); err != nil {
		return err
	}
	if deps.Checkout, err = checkout.NewService(checkout.ServiceParams{
		Tx:             dbClient,
		ProductRepo:    productRepo,
		OrdersRepo:     ordersRepo,
		Addresses:      addressRepo,
		PaymentMethods: paymentRepo,
		Metrics:        metrics.NewOrderMetrics(registry),
		Logger:         logg,
	}); err != nil {
		return err
	}
	if deps.Orders, err = orders.NewService(ordersRepo, logg); err != nil {
		return err
	}
	if deps.Billing, err = billing.NewService(billing.NewRepository(conn)); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": dbClient.Dialect(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
