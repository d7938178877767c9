package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/dto"
)

// Exchange trades a password for the user's active api key.
func (h *Handler) Exchange(c *fiber.Ctx) error {
	var input dto.ExchangeInput
	if err := c.BodyParser(&input); err != nil || input.Password == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoPasswordProvided.Code)
	}

	apiKey, err := h.credentials.Exchange(c.UserContext(), input.Password)
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"api_key": apiKey,
	})
}

// Revoke rotates the caller's api key: the presented key is permanently
// revoked and a replacement is returned.
func (h *Handler) Revoke(c *fiber.Ctx) error {
	apiKey, _ := c.Locals(localAPIKey).(string)

	newKey, err := h.credentials.Rotate(c.UserContext(), apiKey)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrAlreadyRevoked):
			return errorResponse(c, fiber.StatusConflict, apperror.ErrAlreadyRevoked.Code)
		case errors.Is(err, apperror.ErrUserNotFound):
			return errorResponse(c, fiber.StatusNotFound, apperror.ErrUserNotFound.Code)
		default:
			return unknownErrorResponse(c, h.log, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"api_key": newKey,
	})
}
