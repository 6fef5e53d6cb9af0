package presenters

import (
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"pricecrowd-backend/domain"
	"strings"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse writes data as the JSON body. A nil data with a non-204
// status writes {"message": message}.
func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	if statusCode == fiber.StatusNoContent {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if data == nil {
		return c.Status(statusCode).JSON(fiber.Map{"message": message})
	}
	return c.Status(statusCode).JSON(data)
}

func statusCodeName(statusCode int) string {
	return strings.ToLower(strings.ReplaceAll(utils.StatusMessage(statusCode), " ", "_"))
}

// ErrorResponse writes {"error": code, "message": text}. Coded errors carry
// their own text; internal failures never leak theirs.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := ErrorBody{Error: statusCodeName(statusCode), Message: message}

	var coded *domain.Error
	switch {
	case err == nil:
	case errors.As(err, &coded):
		body.Error = coded.Code
		body.Message = coded.Message
	case errors.Is(err, domain.ErrInternal) || statusCode >= fiber.StatusInternalServerError:
		body.Error = domain.Code(err)
	default:
		if code := domain.Code(err); code != "internal_error" {
			body.Error = code
		}
		body.Message = message + ": " + err.Error()
	}
	return c.Status(statusCode).JSON(body)
}

// ServiceError maps a service error to its HTTP status.
func ServiceError(c *fiber.Ctx, message string, err error) error {
	return ErrorResponse(c, StatusFromError(err), message, err)
}

func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
