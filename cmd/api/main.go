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

	"github.com/kkarhua/fullrest-backend/api/routes"
	"github.com/kkarhua/fullrest-backend/internal/auth"
	"github.com/kkarhua/fullrest-backend/internal/categories"
	"github.com/kkarhua/fullrest-backend/internal/media"
	"github.com/kkarhua/fullrest-backend/internal/products"
	"github.com/kkarhua/fullrest-backend/internal/purchases"
	"github.com/kkarhua/fullrest-backend/internal/shipments"
	"github.com/kkarhua/fullrest-backend/internal/stock"
	"github.com/kkarhua/fullrest-backend/internal/users"
	pkgauth "github.com/kkarhua/fullrest-backend/pkg/auth"
	"github.com/kkarhua/fullrest-backend/pkg/config"
	"github.com/kkarhua/fullrest-backend/pkg/db"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"github.com/kkarhua/fullrest-backend/pkg/metrics"
	"github.com/kkarhua/fullrest-backend/pkg/migrate"
	"github.com/kkarhua/fullrest-backend/pkg/redis"
	"github.com/kkarhua/fullrest-backend/pkg/security"
	"github.com/kkarhua/fullrest-backend/pkg/storage/local"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	if cfg.App.IsProd() && cfg.DB.IsSQLite() {
		return errors.New("sqlite is not supported in production")
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured, login rate limit disabled")
	}

	codec, err := pkgauth.NewCodec(cfg.JWT)
	if err != nil {
		return err
	}
	hasher := security.NewHasher(cfg.Password)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.NewAuthMetrics(registry)

	store, err := local.New(cfg.Media.UploadDir)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	params := routes.Params{
		Config:      cfg,
		Logger:      logg,
		Codec:       codec,
		DB:          dbClient,
		Redis:       redisClient,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		AuthMetrics: authMetrics,
		Gatherer:    registry,
	}

	usersRepo := users.NewRepository(conn)
	if params.Users, err = users.NewService(usersRepo, hasher); err != nil {
		return err
	}
	if params.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo: usersRepo,
		Hasher:   hasher,
		Codec:    codec,
		Metrics:  authMetrics,
		Logger:   logg,
	}); err != nil {
		return err
	}
	if params.Categories, err = categories.NewService(categories.NewRepository(conn)); err != nil {
		return err
	}
	if params.Products, err = products.NewService(products.ServiceParams{
		Repo:   products.NewRepository(conn),
		Images: store,
		Logger: logg,
	}); err != nil {
		return err
	}
	if params.Stock, err = stock.NewService(stock.NewRepository(conn)); err != nil {
		return err
	}
	if params.Shipments, err = shipments.NewService(shipments.NewRepository(conn)); err != nil {
		return err
	}
	if params.Purchases, err = purchases.NewService(purchases.NewRepository(conn), time.Now); err != nil {
		return err
	}
	if params.Media, err = media.NewService(media.ServiceParams{
		Repo:     media.NewRepository(conn),
		Store:    store,
		MaxBytes: cfg.Media.MaxUploadBytes(),
		Logger:   logg,
	}); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      routes.NewRouter(params),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       server.Addr,
		"db_driver":  dbClient.Driver(),
		"upload_dir": store.Root(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
