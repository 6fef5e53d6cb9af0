package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/api/presenters"
	"pricecrowd-backend/pkg/receipt"
)

type (
	ReceiptHandler interface {
		Upload(c *fiber.Ctx) error
		List(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

// Upload answers 200 for every well-formed request; the outcome is in status.
func (h *receiptHandler) Upload(c *fiber.Ctx) error {
	req := new(domain.SubmitReceiptRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadQR, err)
	}

	status, err := h.receiptService.Submit(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUploadQR, err)
	}

	return presenters.SuccessResponse(c, domain.SubmitReceiptResponse{Status: status}, fiber.StatusOK, "")
}

func (h *receiptHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", domain.ReceiptListLimit)

	receipts, err := h.receiptService.List(c.UserContext(), limit)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, receipts, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}
