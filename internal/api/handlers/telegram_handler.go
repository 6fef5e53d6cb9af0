package handlers

import (
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/api/presenters"
	"pricecrowd-backend/pkg/telegram"
)

type (
	TelegramHandler interface {
		GetSettings(c *fiber.Ctx) error
		UpdateSettings(c *fiber.Ctx) error
		Status(c *fiber.Ctx) error
		Webhook(c *fiber.Ctx) error
	}

	telegramHandler struct {
		settingsService telegram.SettingsService
		webhook         *telegram.Webhook
		validator       *validator.Validate
	}
)

func NewTelegramHandler(settingsService telegram.SettingsService, webhook *telegram.Webhook, validator *validator.Validate) TelegramHandler {
	return &telegramHandler{
		settingsService: settingsService,
		webhook:         webhook,
		validator:       validator,
	}
}

func (h *telegramHandler) GetSettings(c *fiber.Ctx) error {
	res, err := h.settingsService.Get(c.UserContext())
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetSettings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSettings)
}

func (h *telegramHandler) UpdateSettings(c *fiber.Ctx) error {
	req := new(domain.TelegramSettingsRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateSettings, err)
	}

	res, err := h.settingsService.Update(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUpdateSettings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateSettings)
}

func (h *telegramHandler) Status(c *fiber.Ctx) error {
	res, err := h.settingsService.Status(c.UserContext())
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetSettings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBotStatus)
}

// Webhook answers 200 to anything Telegram sent, so it does not redeliver.
// Requests without the configured secret token get 403.
func (h *telegramHandler) Webhook(c *fiber.Ctx) error {
	update := new(telegram.Update)
	if err := c.BodyParser(update); err != nil {
		return c.SendStatus(fiber.StatusOK)
	}

	secret := c.Get(telegram.SecretTokenHeader)
	if err := h.webhook.Handle(c.UserContext(), secret, *update); errors.Is(err, domain.ErrWebhookSecretMismatch) {
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageUserNotAllowed, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
