package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sweetshop/internal/bootstrap"
	"github.com/nikolayk812/sweetshop/internal/bootstrap/steps"
	"github.com/nikolayk812/sweetshop/internal/config"
	h "github.com/nikolayk812/sweetshop/internal/http"
	"github.com/nikolayk812/sweetshop/internal/idempotency"
	"github.com/nikolayk812/sweetshop/internal/memory"
	"github.com/nikolayk812/sweetshop/internal/metrics"
	"github.com/nikolayk812/sweetshop/internal/notify"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/nikolayk812/sweetshop/internal/repository"
	"github.com/nikolayk812/sweetshop/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "sweetshop"

type stores struct {
	carts     port.CartRepository
	catalog   port.Catalog
	purchases port.PurchaseRepository
	committer port.CheckoutCommitter
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", serviceName)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("openStores: %w", err)
	}
	defer closeStores()

	guard, closeGuard, err := openGuard(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("openGuard: %w", err)
	}
	defer closeGuard()

	notifier, closeNotifier := openNotifier(cfg, logger)
	defer closeNotifier()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	carts := service.NewCartService(s.carts, s.catalog, logger)
	checkout := service.NewCheckoutService(s.carts, s.catalog, s.committer, notifier, m, logger).
		WithNotifyTimeout(cfg.NotifyTimeout)
	orders := service.NewOrderService(s.purchases, cfg.DefaultCurrency, m, logger)

	router := h.NewRouter(h.Handlers{
		Cart:           h.NewCartHandler(carts, cfg.RequestTimeout, logger),
		Checkout:       h.NewCheckoutHandler(checkout, guard, cfg.IdempotencyTTL, cfg.RequestTimeout, logger),
		Orders:         h.NewOrdersHandler(orders, cfg.RequestTimeout, logger),
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// openStores picks postgres when DATABASE_URL is set and the in-memory store otherwise.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func(), error) {
	var (
		s       stores
		pSteps  []steps.Step
		closeFn = func() {}
	)

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is empty, using in-memory store")

		store := memory.NewStore()
		s = stores{carts: store, catalog: store, purchases: store, committer: store}
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return s, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		closeFn = pool.Close

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return s, nil, fmt.Errorf("pool.Ping: %w", err)
		}

		migrate, err := steps.NewMigrate(cfg.DatabaseURL)
		if err != nil {
			pool.Close()
			return s, nil, fmt.Errorf("steps.NewMigrate: %w", err)
		}
		pSteps = append(pSteps, migrate)

		s = stores{
			carts:     repository.NewCart(pool),
			catalog:   repository.NewCatalog(pool),
			purchases: repository.NewPurchase(pool),
			committer: repository.NewCheckoutCommitter(pool),
		}
	}

	if cfg.SeedCatalog {
		seed, err := steps.NewSeedCatalog(s.catalog, steps.SampleSweets(cfg.DefaultCurrency))
		if err != nil {
			closeFn()
			return s, nil, fmt.Errorf("steps.NewSeedCatalog: %w", err)
		}
		pSteps = append(pSteps, seed)
	}

	if len(pSteps) == 0 {
		return s, closeFn, nil
	}

	pipeline, err := bootstrap.NewPipeline(logger, pSteps...)
	if err != nil {
		closeFn()
		return s, nil, fmt.Errorf("bootstrap.NewPipeline: %w", err)
	}

	if err := pipeline.Run(ctx); err != nil {
		closeFn()
		return s, nil, fmt.Errorf("pipeline.Run: %w", err)
	}

	return s, closeFn, nil
}

func openGuard(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.IdempotencyGuard, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR is empty, idempotency keys are kept in process memory")
		return idempotency.NewMemoryGuard(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("client.Ping: %w", err)
	}

	return idempotency.NewRedisGuard(client), func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}, nil
}

func openNotifier(cfg config.Config, logger *slog.Logger) (port.Notifier, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return notify.NewLogNotifier(logger), func() {}
	}

	notifier := notify.NewKafkaNotifier(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.NotifyTimeout), logger)

	return notifier, func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("kafka writer close failed", "error", err)
		}
	}
}
