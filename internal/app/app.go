package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	handler "github.com/nikolayk812/storefront/internal/handler/http"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/shopify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// App wires the cart store, its storage backend and the catalog.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	Store    *cart.Store
	Catalog  port.ProductSource
	Policy   checkout.Policy
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	closers []func()
}

// New builds the application. An unreachable storage backend is not fatal:
// the cart starts empty and persistence failures are logged.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		Registry: prometheus.NewRegistry(),
		Policy: checkout.Policy{
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			ShippingFee:           cfg.ShippingFee,
			TaxRate:               cfg.TaxRate,
		},
	}
	a.Registry.MustRegister(collectors.NewGoCollector())
	a.Metrics = metrics.New(a.Registry)

	slots, err := a.newSlotStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	repo, err := repository.NewCart(slots, cfg.StorageKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("repository.NewCart: %w", err)
	}

	a.Store = cart.NewStore(ctx, repo, logger)
	a.Metrics.ObserveStore(a.Store)

	client := shopify.NewClient(shopify.Config{
		StoreDomain: cfg.StoreDomain,
		AccessToken: cfg.AccessToken,
		APIVersion:  cfg.APIVersion,
		Currency:    cfg.CurrencyUnit(),
		Timeout:     cfg.CatalogTimeout,
	}, logger)
	a.Catalog = a.Metrics.InstrumentProductSource(client)

	return a, nil
}

func (a *App) newSlotStore(ctx context.Context) (port.SlotStore, error) {
	switch a.cfg.Storage {
	case config.StorageMemory:
		return repository.NewMemoryStore(), nil

	case config.StorageFile:
		return repository.NewFileStore(a.cfg.CartDir), nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPass,
			DB:       a.cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		if err := rdb.Ping(ctx).Err(); err != nil {
			a.logger.WarnContext(ctx, "redis unreachable, cart will not be saved",
				slog.String("addr", a.cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		}
		return repository.NewRedisStore(rdb, a.cfg.CartTTL), nil

	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := pool.Ping(ctx); err != nil {
			a.logger.WarnContext(ctx, "postgres unreachable, cart will not be saved",
				slog.String("error", err.Error()),
			)
		}
		return repository.NewPostgresStore(pool), nil

	default:
		return nil, fmt.Errorf("unknown cart storage: %q", a.cfg.Storage)
	}
}

func (a *App) Handler() http.Handler {
	h := handler.NewHandler(a.Store, a.Catalog, handler.Options{
		PageSize:       a.cfg.CatalogPageSize,
		Currency:       a.cfg.CurrencyUnit(),
		Policy:         a.Policy,
		StoreDomain:    a.cfg.StoreDomain,
		HostedCheckout: a.cfg.UseShopifyCheckout,
	}, a.logger)

	return handler.NewRouter(h, a.Metrics, a.Registry, a.logger)
}

// Serve runs the HTTP server until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}
	return nil
}

// Close releases storage connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}
