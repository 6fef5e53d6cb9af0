package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/api/presenters"
	"pricecrowd-backend/pkg/linking"
	"pricecrowd-backend/pkg/user"
)

type (
	UserHandler interface {
		Login(c *fiber.Ctx) error
		LinkTelegramStart(c *fiber.Ctx) error
		LinkTelegramStatus(c *fiber.Ctx) error
		UnlinkTelegram(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		linkService linking.LinkService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, linkService linking.LinkService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		linkService: linkService,
		validator:   validator,
	}
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.userService.Login(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLogin, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *userHandler) LinkTelegramStart(c *fiber.Ctx) error {
	username := c.Locals("username").(string)

	res, err := h.linkService.Issue(c.UserContext(), username)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLink, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLinkStart)
}

func (h *userHandler) LinkTelegramStatus(c *fiber.Ctx) error {
	username := c.Locals("username").(string)

	res, err := h.linkService.Status(c.UserContext(), username)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLink, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLinkState)
}

func (h *userHandler) UnlinkTelegram(c *fiber.Ctx) error {
	username := c.Locals("username").(string)

	if err := h.linkService.Unlink(c.UserContext(), username); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLink, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusNoContent, "")
}
