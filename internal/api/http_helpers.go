package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/khare/internal/logging"
	"github.com/terraincognita07/khare/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// statusForError maps service error kinds to HTTP status codes. Delivery and
// generation are checked before auth because auth wraps them.
func statusForError(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrWeakPassword):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDelivery), errors.Is(err, services.ErrGeneration):
		return fiber.StatusInternalServerError
	case errors.Is(err, services.ErrNetwork):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrAuth):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError answers with the error's own message when it is a service or
// request error, and a generic one otherwise.
func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)

	message := "internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		message = fiberErr.Message
	} else if services.KindOf(err) != nil {
		message = err.Error()
	}

	logger := logging.FromContext(c.UserContext())
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return apiError(c, status, message)
}

// parseInput binds the body into input and runs the struct validation rules.
func (handler *Handler) parseInput(c *fiber.Ctx, input any) error {
	if err := c.BodyParser(input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if value, ok := input.(normalizer); ok {
		value.normalize()
	}
	if err := handler.validator.Struct(input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/functions/")
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
