// API server entry point for the fulfill-billing service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/turtacn/fulfill-billing/internal/application/billing"
	"github.com/turtacn/fulfill-billing/internal/config"
	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/redis"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/fulfill-billing/internal/interfaces/http"
	"github.com/turtacn/fulfill-billing/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting fulfill-billing API server",
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	// Storage.
	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Database.MigrationPath != "" {
		if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
			return err
		}
	}

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	cache := redis.NewRedisCache(redisClient, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL))

	// Repositories.  Rate lookups go through the cache decorator.
	vendorRepo := repositories.NewPostgresVendorRepo(conn, logger)
	recordRepo := repositories.NewPostgresRecordRepo(conn, logger)
	rateRepo := redis.NewCachedRateRepo(
		repositories.NewPostgresRateRepo(conn, logger), cache, cfg.Billing.RateCacheTTL)
	invoiceRepo := repositories.NewPostgresInvoiceRepo(conn, logger)

	// Messaging.
	var events appbilling.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		events = producer
	}

	// Metrics.
	var metrics *prometheus.BillingMetrics
	var appMetrics appbilling.Metrics
	if cfg.Metrics.Enabled {
		metrics = prometheus.NewBillingMetrics()
		appMetrics = metrics
	}

	// Services.
	identity := vendor.NewIdentityService(vendorRepo, logger)
	filter := appbilling.NewRecordFilter(identity, recordRepo, logger)
	fees := appbilling.NewFeeService(vendorRepo, filter, rateRepo, logger)
	invoices := appbilling.NewInvoiceService(vendorRepo, fees, invoiceRepo, events, appMetrics, logger)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Mode:           cfg.Server.Mode,
		VendorHandler:  handlers.NewVendorHandler(vendorRepo, identity),
		InvoiceHandler: handlers.NewInvoiceHandler(invoices),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": handlers.PingerFunc(conn.HealthCheck),
			"redis":    handlers.PingerFunc(redisClient.Ping),
		}),
		Logger:      logger,
		Metrics:     metrics,
		MetricsPath: cfg.Metrics.Path,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

// loadConfig reads the config file when present and falls back to environment
// variables and defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment and defaults\n", path)
	return config.LoadFromEnv()
}

// newLogger maps the service log config onto the logging package.
func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           format,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	})
}
