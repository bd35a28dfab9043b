package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/surf-forecast/internal/api/http"
	"github.com/i474232898/surf-forecast/internal/config"
	"github.com/i474232898/surf-forecast/internal/forecast"
	"github.com/i474232898/surf-forecast/internal/forecast/stormglass"
	"github.com/i474232898/surf-forecast/internal/request"
	"github.com/i474232898/surf-forecast/internal/scheduler"
	"github.com/i474232898/surf-forecast/internal/store"
	"github.com/i474232898/surf-forecast/internal/store/sqlite"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Beach repository, seeded from the beaches file on first start.
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		zlog.Fatal("failed to create data directory", zap.Error(err))
	}
	beaches, err := sqlite.NewBeachStorage(cfg.DatabasePath, zlog)
	if err != nil {
		zlog.Fatal("failed to open beach storage", zap.Error(err))
	}
	defer beaches.Close()

	if err := seedBeaches(context.Background(), beaches, cfg.Beaches, zlog); err != nil {
		zlog.Fatal("failed to seed beaches", zap.Error(err))
	}

	// Run history with configured retention.
	runs := store.NewMemoryStore(cfg.RunMaxHistory, cfg.RunMaxAge)

	// StormGlass behind a circuit breaker and a rate limiter.
	req := request.NewClient(request.Config{
		Name:      "stormglass",
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
	})
	sg := stormglass.NewClient(req, cfg.StormGlassAPIURL, cfg.StormGlassAPIToken, cfg.StormGlassSource, zlog)

	service := forecast.NewService(sg, zlog)

	sched := scheduler.New(cfg.FetchInterval, service, beaches, runs, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "surf-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "surf-forecast",
		})
	})

	httpapi.RegisterRoutes(app, service, beaches, runs)

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func seedBeaches(ctx context.Context, repo *sqlite.BeachStorage, seed []forecast.Beach, zlog *zap.Logger) error {
	if len(seed) == 0 {
		return nil
	}
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		zlog.Debug("beach storage already populated; skipping seed", zap.Int("beaches", n))
		return nil
	}
	for _, b := range seed {
		if _, err := repo.Create(ctx, b); err != nil {
			return err
		}
	}
	zlog.Info("seeded beaches", zap.Int("beaches", len(seed)))
	return nil
}
