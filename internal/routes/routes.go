package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/points_ledger/internal/config"
	"github.com/congo-pay/points_ledger/internal/ledger"
	"github.com/congo-pay/points_ledger/internal/middleware"
	"github.com/congo-pay/points_ledger/internal/notification"
	"github.com/congo-pay/points_ledger/internal/points"
)

// Deps aggregates shared dependencies required to wire routes. Cache,
// Notifier and Ledger are optional.
type Deps struct {
	Cfg      config.Config
	Cache    *redis.Client
	Notifier notification.Notifier
	Ledger   ledger.Ledger
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	ledgerBackend := d.Ledger
	if ledgerBackend == nil {
		ledgerBackend = ledger.NewInMemory()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}
	pointsSvc := points.NewService(ledgerBackend, notifier, d.Logger)
	pointsHandler := points.NewHandler(pointsSvc, d.Logger)

	var spendLimiter fiber.Handler
	if d.Cache != nil && d.Cfg.SpendRateLimit > 0 {
		spendLimiter = middleware.RateLimit(d.Cache, "spend", d.Cfg.SpendRateLimit)
	}
	RegisterPointsRoutes(app, pointsHandler, spendLimiter)

	return nil
}
