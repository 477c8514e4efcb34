// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers together and applies the
// middleware each route group needs.
package routes

import (
	"remit/internal/handlers"
	"remit/internal/metrics"
	"remit/internal/middleware"
	"remit/internal/repositories"
	"remit/internal/services/history"
	"remit/internal/services/notification"
	"remit/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	ledger := repositories.NewLedgerRepository(db)

	notifier := notification.NewService(repositories.RedisClient)
	collector := metrics.NewPrometheusCollector()

	transferService := transfer.NewService(
		ledger,
		repositories.CacheService,
		notifier,
		transfer.Config{},
		collector,
	)
	historyService := history.NewService(ledger, repositories.CacheService)

	transferHandler := handlers.NewTransferHandler(transferService)
	historyHandler := handlers.NewHistoryHandler(historyService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api", middleware.RequireAccountID)
	api.Post("/transfer", transferHandler.Transfer)
	api.Get("/history", historyHandler.GetHistory)
}
