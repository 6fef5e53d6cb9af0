package handlers

import (
	"github.com/gofiber/fiber/v2"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/api/presenters"
	"pricecrowd-backend/pkg/pricing"
)

type (
	PricingHandler interface {
		ListActivities(c *fiber.Ctx) error
		ListStoreActivities(c *fiber.Ctx) error
		ListStorePrices(c *fiber.Ctx) error
		ListProductPrices(c *fiber.Ctx) error
	}

	pricingHandler struct {
		pricingService pricing.PricingService
	}
)

func NewPricingHandler(pricingService pricing.PricingService) PricingHandler {
	return &pricingHandler{pricingService: pricingService}
}

func (h *pricingHandler) activities(c *fiber.Ctx, storeID string) error {
	activities, err := h.pricingService.ListActivities(c.UserContext(), storeID, c.QueryInt("limit", domain.ActivityListLimit))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetActivities, err)
	}
	return presenters.SuccessResponse(c, activities, fiber.StatusOK, domain.MessageSuccessGetActivities)
}

func (h *pricingHandler) ListActivities(c *fiber.Ctx) error {
	return h.activities(c, "")
}

func (h *pricingHandler) ListStoreActivities(c *fiber.Ctx) error {
	return h.activities(c, c.Params("id"))
}

func (h *pricingHandler) prices(c *fiber.Ctx, storeID, productID string) error {
	prices, err := h.pricingService.ListPrices(c.UserContext(), storeID, productID)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetPrices, err)
	}
	return presenters.SuccessResponse(c, prices, fiber.StatusOK, domain.MessageSuccessGetPrices)
}

func (h *pricingHandler) ListStorePrices(c *fiber.Ctx) error {
	return h.prices(c, c.Params("id"), "")
}

func (h *pricingHandler) ListProductPrices(c *fiber.Ctx) error {
	return h.prices(c, "", c.Params("id"))
}
