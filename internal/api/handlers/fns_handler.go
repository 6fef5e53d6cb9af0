package handlers

import (
	"github.com/gofiber/fiber/v2"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/api/presenters"
	"pricecrowd-backend/pkg/fns"
)

type (
	FNSHandler interface {
		Check(c *fiber.Ctx) error
	}

	fnsHandler struct {
		fnsService fns.FNSService
	}
)

func NewFNSHandler(fnsService fns.FNSService) FNSHandler {
	return &fnsHandler{fnsService: fnsService}
}

// Check relays the verification response body unchanged.
func (h *fnsHandler) Check(c *fiber.Ctx) error {
	req := new(domain.VerifyReceiptRequest)
	if err := c.QueryParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedProcessRequest, err)
	}

	verified, err := h.fnsService.Check(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedVerifyReceipt, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(verified.Raw)
}
