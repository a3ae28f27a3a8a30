package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-cart/api/routes"
	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/internal/checkout"
	"github.com/angelmondragon/storefront-cart/internal/commerce"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/db"
	"github.com/angelmondragon/storefront-cart/pkg/instance"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/metrics"
	"github.com/angelmondragon/storefront-cart/pkg/migrate"
	"github.com/angelmondragon/storefront-cart/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront api exited", err)
		os.Exit(1)
	}
}

// run serves until a signal arrives or the listener fails. Storage is closed
// on every return path.
func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"storage":  cfg.Cart.Storage,
		"instance": instance.GetID(),
	})

	st, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("bootstrap cart storage: %w", err)
	}
	defer func() {
		if err := closeAll(st.closers); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(promReg)

	registry := cart.NewRegistry(st.backend, cart.RegistryConfig{
		IdleTTL:       cfg.Cart.IdleTTL,
		SharedBackend: st.shared,
	},
		cart.WithLogger(logg),
		cart.WithMetrics(storefrontMetrics),
		cart.WithPersistTimeout(cfg.Cart.PersistTimeout),
	)
	go registry.Run(ctx, cfg.Cart.SweepInterval)

	commerceClient, err := commerce.NewClient(cfg.Commerce.BaseURL,
		commerce.WithTimeout(cfg.Commerce.Timeout),
		commerce.WithObserver(storefrontMetrics),
	)
	if err != nil {
		return fmt.Errorf("create commerce client: %w", err)
	}

	checkoutService, err := checkout.NewService(commerceClient, checkout.Config{
		DeliveryFee: cfg.Cart.DeliveryFeeMinor(),
		Currency:    cfg.Cart.Currency,
	},
		checkout.WithGuard(st.guard),
		checkout.WithLogger(logg),
		checkout.WithMetrics(storefrontMetrics),
	)
	if err != nil {
		return fmt.Errorf("create checkout service: %w", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithField(ctx, "addr", addr)

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, registry, checkoutService, commerceClient,
			promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting storefront api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("storefront api server stopped unexpectedly: %w", err)
		}
	case <-ctx.Done():
	}

	logg.Info(ctx, "storefront api shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

type storage struct {
	backend cart.Backend
	guard   checkout.Guard
	closers []io.Closer
	// shared is set for backends other instances may write.
	shared bool
}

// openStorage builds the snapshot backend selected by configuration and the
// checkout guard that matches its deployment shape.
func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage, error) {
	switch cfg.Cart.Storage {
	case config.StorageMemory:
		return storage{backend: cart.NewMemoryBackend(), guard: checkout.NewLocalGuard()}, nil

	case config.StorageFile:
		backend, err := cart.NewFileBackend(cfg.Cart.FileDir)
		if err != nil {
			return storage{}, err
		}
		return storage{backend: backend, guard: checkout.NewLocalGuard()}, nil

	case config.StorageRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return storage{}, fmt.Errorf("bootstrap redis: %w", err)
		}
		return storage{
			backend: cart.NewRedisBackend(client, cfg.Cart.SnapshotTTL),
			guard:   checkout.NewRedisGuard(client, cfg.Cart.CheckoutLockTTL),
			closers: []io.Closer{client},
			shared:  true,
		}, nil

	case config.StorageSQL:
		client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			return storage{}, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return storage{}, multierr.Append(fmt.Errorf("dev migrations: %w", err), client.Close())
		}
		return storage{
			backend: cart.NewSQLBackend(client.DB(), cfg.Cart.SnapshotTTL),
			guard:   checkout.NewLocalGuard(),
			closers: []io.Closer{client},
			shared:  !cfg.FeatureFlags.UseSQLite,
		}, nil
	}
	return storage{}, fmt.Errorf("unsupported cart storage %q", cfg.Cart.Storage)
}

func closeAll(closers []io.Closer) error {
	var errs error
	for _, c := range closers {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}
