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

	"github.com/jewel109/mobiledoor-api/api/routes"
	"github.com/jewel109/mobiledoor-api/internal/cart"
	"github.com/jewel109/mobiledoor-api/internal/inventory"
	"github.com/jewel109/mobiledoor-api/internal/orders"
	product "github.com/jewel109/mobiledoor-api/internal/products"
	"github.com/jewel109/mobiledoor-api/pkg/config"
	"github.com/jewel109/mobiledoor-api/pkg/db"
	"github.com/jewel109/mobiledoor-api/pkg/logger"
	"github.com/jewel109/mobiledoor-api/pkg/metrics"
	"github.com/jewel109/mobiledoor-api/pkg/migrate"
	"github.com/jewel109/mobiledoor-api/pkg/outbox"
	"github.com/jewel109/mobiledoor-api/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	runErr := run(cfg, logg, dbClient, redisClient)
	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(context.Background(), "error closing api dependencies", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	handler, err := buildHandler(cfg, logg, dbClient, redisClient, reg, orderMetrics, httpMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		return err
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
		return err
	}
	return nil
}

func buildHandler(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	orderMetrics *metrics.OrderMetrics,
	httpMetrics *metrics.HTTPMetrics,
) (http.Handler, error) {
	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cartRepo, dbClient)
	if err != nil {
		return nil, err
	}
	cartValidator, err := cart.NewValidator(cartRepo)
	if err != nil {
		return nil, err
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repository: orders.NewRepository(dbClient.DB()),
		Carts:      cartRepo,
		Validator:  cartValidator,
		Ledger:     inventory.NewLedger(orderMetrics),
		Tx:         dbClient,
		Outbox:     outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics:    orderMetrics,
		Logger:     logg,
	})
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(cfg, logg, dbClient, redisClient, gatherer, httpMetrics,
		productService, cartService, cartValidator, ordersService), nil
}
