package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pricecrowd-backend/internal/api/handlers"
	"pricecrowd-backend/internal/middleware"
	"pricecrowd-backend/pkg/jwt"
)

type Config struct {
	App              *fiber.App
	ReceiptHandler   handlers.ReceiptHandler
	FNSHandler       handlers.FNSHandler
	OperationHandler handlers.OperationHandler
	PricingHandler   handlers.PricingHandler
	UserHandler      handlers.UserHandler
	TelegramHandler  handlers.TelegramHandler
	Middleware       middleware.Middleware
	JWTService       jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.User()
	c.Receipts()
	c.Operations()
	c.Pricing()
	c.Settings()
}

func (c *Config) GuestRoute() {
	c.App.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	c.App.Post("/telegram/webhook", c.TelegramHandler.Webhook)
	c.App.Post("/api/v1/auth/login", c.UserHandler.Login)
	c.App.Get("/api/v1/fns/check", c.FNSHandler.Check)
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware(c.JWTService))
	{
		user.Post("/link_telegram/start", c.UserHandler.LinkTelegramStart)
		user.Get("/link_telegram/status", c.UserHandler.LinkTelegramStatus)
		user.Post("/link_telegram/unlink", c.UserHandler.UnlinkTelegram)
	}
}

func (c *Config) Receipts() {
	receipts := c.App.Group("/api/v1/receipts")
	receipts.Post("/upload", c.ReceiptHandler.Upload)
	receipts.Get("", c.Middleware.AuthMiddleware(c.JWTService), c.Middleware.AdminMiddleware(), c.ReceiptHandler.List)
}

func (c *Config) Operations() {
	operations := c.App.Group("/api/v1/operations", c.Middleware.AuthMiddleware(c.JWTService), c.Middleware.AdminMiddleware())
	operations.Post("", c.OperationHandler.Create)
	operations.Get("", c.OperationHandler.List)
	operations.Get("/:id", c.OperationHandler.Get)
	operations.Put("/:id", c.OperationHandler.Update)
	operations.Post("/:id/status", c.OperationHandler.UpdateStatus)
}

func (c *Config) Pricing() {
	c.App.Get("/api/v1/activities", c.PricingHandler.ListActivities)
	c.App.Get("/api/v1/stores/:id/activities", c.PricingHandler.ListStoreActivities)
	c.App.Get("/api/v1/stores/:id/prices", c.PricingHandler.ListStorePrices)
	c.App.Get("/api/v1/products/:id/prices", c.PricingHandler.ListProductPrices)
}

func (c *Config) Settings() {
	settings := c.App.Group("/api/v1/settings", c.Middleware.AuthMiddleware(c.JWTService), c.Middleware.AdminMiddleware())
	settings.Get("/telegram", c.TelegramHandler.GetSettings)
	settings.Put("/telegram", c.TelegramHandler.UpdateSettings)
	settings.Get("/telegram/status", c.TelegramHandler.Status)
}
