package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/api/presenters"
	"pricecrowd-backend/pkg/operation"
)

type (
	OperationHandler interface {
		Create(c *fiber.Ctx) error
		List(c *fiber.Ctx) error
		Get(c *fiber.Ctx) error
		Update(c *fiber.Ctx) error
		UpdateStatus(c *fiber.Ctx) error
	}

	operationHandler struct {
		operationService operation.OperationService
		validator        *validator.Validate
	}
)

func NewOperationHandler(operationService operation.OperationService, validator *validator.Validate) OperationHandler {
	return &operationHandler{
		operationService: operationService,
		validator:        validator,
	}
}

func (h *operationHandler) Create(c *fiber.Ctx) error {
	req := new(domain.CreateOperationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateOperation, err)
	}

	id, err := h.operationService.Create(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedCreateOperation, err)
	}

	return presenters.SuccessResponse(c, domain.CreateOperationResponse{ID: id}, fiber.StatusOK, domain.MessageSuccessCreateOperation)
}

func (h *operationHandler) List(c *fiber.Ctx) error {
	ops, err := h.operationService.List(c.UserContext(), c.QueryInt("limit", domain.OperationListLimit))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetOperations, err)
	}

	return presenters.SuccessResponse(c, ops, fiber.StatusOK, domain.MessageSuccessGetOperations)
}

func (h *operationHandler) Get(c *fiber.Ctx) error {
	op, err := h.operationService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetOperations, err)
	}

	return presenters.SuccessResponse(c, op, fiber.StatusOK, domain.MessageSuccessGetOperations)
}

func (h *operationHandler) Update(c *fiber.Ctx) error {
	req := new(domain.UpdateOperationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateOperation, err)
	}

	if err := h.operationService.Update(c.UserContext(), c.Params("id"), *req); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUpdateOperation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusNoContent, "")
}

func (h *operationHandler) UpdateStatus(c *fiber.Ctx) error {
	req := new(domain.UpdateStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.operationService.Transition(c.UserContext(), c.Params("id"), req.Status); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUpdateStatus, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusNoContent, "")
}
