package config

import (
	"context"
	"fmt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"io"
	"os"
	"pricecrowd-backend/internal/api/handlers"
	"pricecrowd-backend/internal/api/routes"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/middleware"
	"pricecrowd-backend/internal/utils"
	"pricecrowd-backend/internal/utils/dedup"
	"pricecrowd-backend/internal/utils/mailing"
	"pricecrowd-backend/internal/utils/ratelimit"
	"pricecrowd-backend/internal/utils/storage"
	"pricecrowd-backend/pkg/fns"
	"pricecrowd-backend/pkg/jwt"
	"pricecrowd-backend/pkg/linking"
	"pricecrowd-backend/pkg/operation"
	"pricecrowd-backend/pkg/pricing"
	"pricecrowd-backend/pkg/receipt"
	"pricecrowd-backend/pkg/telegram"
	"pricecrowd-backend/pkg/user"
	"time"
)

const (
	requestsPerSecond = 10
	webhookDedupTTL   = 24 * time.Hour
)

type (
	// Dependencies are the external collaborators of the application.
	// Nil Redis, Archiver and Notifier disable the features built on them.
	Dependencies struct {
		DB            *gorm.DB
		Redis         *redis.Client
		Logger        logging.Logger
		AccessLog     io.Writer
		RateLimitMax  int
		JWTService    jwt.JWTService
		FNS           fns.Config
		Archiver      fns.Archiver
		Notifier      mailing.ReceiptNotifier
		BotAPI        telegram.BotAPI
		WebAppURL     string
		SendRate      float64
		SendBurst     float64
		AdminUsername string
		AdminPassword string
	}

	Application struct {
		App    *fiber.App
		Worker *telegram.Worker
		State  *telegram.WorkerState
	}
)

// NewApp builds the application from the loaded configuration.
func NewApp(ctx context.Context, db *gorm.DB, rdb *redis.Client, log logging.Logger) (*Application, error) {
	// setting up logging
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	// utils
	s3, err := storage.NewAwsS3(ctx, storage.LoadS3Config())
	if err != nil {
		return nil, err
	}
	var archiver fns.Archiver
	if s3 != nil {
		archiver = s3
	}

	jwtService, err := jwt.NewJWTService()
	if err != nil {
		return nil, err
	}

	cfg := utils.AppConfig()
	return BuildApp(ctx, Dependencies{
		DB:            db,
		Redis:         rdb,
		Logger:        log,
		AccessLog:     file,
		RateLimitMax:  requestsPerSecond,
		JWTService:    jwtService,
		FNS:           fns.LoadConfig(),
		Archiver:      archiver,
		Notifier:      mailing.NewEmailNotifier(mailing.LoadMailConfig(), log),
		BotAPI:        telegram.NewBotClient(cfg.TelegramAPIURL),
		WebAppURL:     cfg.WebAppURL,
		SendRate:      utils.GetConfigFloat("TELEGRAM_SEND_RATE", 20),
		SendBurst:     utils.GetConfigFloat("TELEGRAM_SEND_BURST", 20),
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	})
}

func BuildApp(ctx context.Context, deps Dependencies) (*Application, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	if deps.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "UTC",
			Output:     deps.AccessLog,
		}))
	}
	if deps.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimitMax,
			Expiration: 1 * time.Second,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	// Repository
	userRepository := user.NewUserRepository(deps.DB)
	receiptRepository := receipt.NewReceiptRepository(deps.DB)
	operationRepository := operation.NewOperationRepository(deps.DB)
	pricingRepository := pricing.NewPricingRepository(deps.DB)
	linkRepository := linking.NewLinkRepository(deps.DB)
	settingsRepository := telegram.NewSettingsRepository(deps.DB)

	// Service
	log := deps.Logger
	userService := user.NewUserService(userRepository, deps.JWTService, log.With("service", "user"))
	receiptService := receipt.NewReceiptService(receiptRepository, deps.Notifier, log.With("service", "receipt"))
	fnsService := fns.NewFNSService(deps.FNS, deps.Archiver, log.With("service", "fns"))
	pricingService := pricing.NewPricingService(pricingRepository, log.With("service", "pricing"))
	operationService := operation.NewOperationService(operationRepository, pricingService, log.With("service", "operation"))
	linkService := linking.NewLinkService(linkRepository, userRepository, log.With("service", "linking"))

	// Telegram
	state := telegram.NewWorkerState()
	sendLimiter := ratelimit.NewRedisRateLimiter(deps.Redis, "pricecrowd:ratelimit:telegram_send", deps.SendRate, deps.SendBurst)
	dispatcher := telegram.NewDispatcher(receiptService, linkService, deps.BotAPI, sendLimiter, deps.WebAppURL, state, log.With("service", "telegram"))
	worker := telegram.NewWorker(settingsRepository, deps.BotAPI, dispatcher, state, log)
	webhook := telegram.NewWebhook(settingsRepository, dispatcher, dedup.NewDeduplicator(deps.Redis, webhookDedupTTL), log)
	settingsService := telegram.NewSettingsService(settingsRepository, state)

	if err := userService.SeedAdmin(ctx, deps.AdminUsername, deps.AdminPassword); err != nil {
		return nil, err
	}

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	fnsHandler := handlers.NewFNSHandler(fnsService)
	operationHandler := handlers.NewOperationHandler(operationService, validator)
	pricingHandler := handlers.NewPricingHandler(pricingService)
	userHandler := handlers.NewUserHandler(userService, linkService, validator)
	telegramHandler := handlers.NewTelegramHandler(settingsService, webhook, validator)

	// routes
	routesConfig := routes.Config{
		App:              app,
		ReceiptHandler:   receiptHandler,
		FNSHandler:       fnsHandler,
		OperationHandler: operationHandler,
		PricingHandler:   pricingHandler,
		UserHandler:      userHandler,
		TelegramHandler:  telegramHandler,
		Middleware:       middlewares,
		JWTService:       deps.JWTService,
	}
	routesConfig.Setup()

	return &Application{App: app, Worker: worker, State: state}, nil
}
