package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/captaleads/funnelcast/internal/config"
	"github.com/captaleads/funnelcast/internal/ratelimit"
	"github.com/captaleads/funnelcast/internal/server"
	"github.com/captaleads/funnelcast/internal/store"
	"github.com/captaleads/funnelcast/pkg/constants"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	addr := flag.String("addr", "", "listen address override (e.g. :8080)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Determine listen address (CLI override takes precedence over config)
	address := conf.Server.Address
	if *addr != "" {
		address = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := openRedis(ctx, conf, logger)

	st, err := openStore(ctx, conf, redisClient, logger)
	if err != nil {
		logger.Fatal("failed to open lead store",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close lead store",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	// Throttle capture submissions per client IP
	var guard func(next http.Handler) http.Handler
	if conf.RateLimit.Enabled {
		buckets := ratelimit.NewStore(conf.RateLimit.RPS, conf.RateLimit.Burst)
		buckets.StartJanitor(ctx)

		var stats ratelimit.StatsRecorder
		if redisClient != nil {
			stats = ratelimit.NewRedisStats(redisClient)
		}
		guard = ratelimit.Middleware(ratelimit.Options{
			Store:             buckets,
			Stats:             stats,
			TrustForwardedFor: conf.RateLimit.TrustForwardedFor,
		})
	}

	srv := &http.Server{
		Addr:              address,
		Handler:           server.NewHandler(logger, st, guard, version),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received",
			zap.String("op", "main"),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	logger.Info("server listening",
		zap.String("op", "main"),
		zap.String("address", address),
		zap.String("version", version),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// openRedis connects to Redis when configured. An unreachable Redis downgrades
// to a nil client so the service still comes up without caching or stats.
func openRedis(ctx context.Context, conf *config.Configuration, logger *zap.Logger) *redis.Client {
	if !conf.Redis.Configured() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; continuing without cache and stats",
			zap.String("op", "main"),
			zap.String("addr", conf.Redis.Addr),
			zap.Error(err),
		)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected",
		zap.String("op", "main"),
		zap.String("addr", conf.Redis.Addr),
	)
	return client
}

// openStore connects to PostgreSQL and runs the migration when a database is
// configured, and falls back to the in-memory store otherwise.
func openStore(ctx context.Context, conf *config.Configuration, cache *redis.Client, logger *zap.Logger) (store.Store, error) {
	if !conf.Database.Configured() {
		logger.Warn("no database configured; using in-memory lead store",
			zap.String("op", "main"),
		)
		return store.NewMemory(), nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", conf.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pg := store.NewPostgres(db, cache, logger)
	if err := pg.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connected",
		zap.String("op", "main"),
	)
	return pg, nil
}
