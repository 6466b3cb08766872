package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	"github.com/sundayezeilo/repostore/internal/config"
	"github.com/sundayezeilo/repostore/internal/idgen"
	"github.com/sundayezeilo/repostore/internal/repos"
	"github.com/sundayezeilo/repostore/internal/server"
	"github.com/sundayezeilo/repostore/internal/telemetry"
)

const instrumentationName = "github.com/sundayezeilo/repostore"

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *repos.MemoryStore
	Server  *server.Server
	Handler *repos.Handler

	shutdownFuncs []func(context.Context) error
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.Observability.ServiceVersion,
	)

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := a.setupTelemetry(ctx); err != nil {
		_ = a.Shutdown()
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	// Setup application dependencies
	store := repos.NewMemoryStore(&repos.MemoryStoreConfig{
		IDGenerator: idgen.New(idgen.Version(cfg.Repos.IDVersion)),
	})

	svcConfig := &repos.ServiceConfig{}
	if cfg.Observability.Enabled {
		metrics, err := telemetry.NewMetrics(otel.Meter(instrumentationName), store.Len)
		if err != nil {
			_ = a.Shutdown()
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		svcConfig.Metrics = metrics
		svcConfig.Tracer = otel.Tracer(instrumentationName)
	}

	svc := repos.NewService(store, svcConfig)
	handler := repos.NewHandler(repos.HandlerConfig{
		Service: svc,
		Logger:  logger,
	})

	a.Store = store
	a.Handler = handler
	a.Server = server.New(cfg, logger, handler)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"id_version", cfg.Repos.IDVersion,
		"otel_enabled", cfg.Observability.Enabled,
	)

	return a, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting", "port", a.Config.Server.Port)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown flushes telemetry. Records held in memory are discarded.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(a.shutdownFuncs) - 1; i >= 0; i-- {
		if err := a.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdownFuncs = nil

	if a.Store != nil {
		a.Logger.Info("discarding in-memory records", "count", a.Store.Len())
	}

	return errors.Join(errs...)
}

func (a *App) setupTelemetry(ctx context.Context) error {
	obs := a.Config.Observability
	if !obs.Enabled {
		return nil
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    obs.ServiceName,
		ServiceVersion: obs.ServiceVersion,
		Environment:    a.Config.App.Environment,
		Endpoint:       obs.OTelEndpoint,
		Insecure:       obs.OTelInsecure,
		SampleRate:     obs.TracingSampleRate,
	})
	if err != nil {
		return err
	}
	a.shutdownFuncs = append(a.shutdownFuncs, shutdownTracer)

	shutdownMetrics, err := telemetry.InitMetrics(ctx, telemetry.MetricConfig{
		ServiceName:    obs.ServiceName,
		ServiceVersion: obs.ServiceVersion,
		Environment:    a.Config.App.Environment,
		Endpoint:       obs.OTelEndpoint,
		Insecure:       obs.OTelInsecure,
	})
	if err != nil {
		return err
	}
	a.shutdownFuncs = append(a.shutdownFuncs, shutdownMetrics)

	a.Logger.Info("telemetry initialized",
		"endpoint", obs.OTelEndpoint,
		"sample_rate", obs.TracingSampleRate,
	)
	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "development" || env == "test" {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
