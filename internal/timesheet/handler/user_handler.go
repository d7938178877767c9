package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/dto"
)

// GetUser returns the authenticated user's row, minus the secret. The fields
// sit at the top level of the body next to "ok".
func (h *Handler) GetUser(c *fiber.Ctx) error {
	secret, _ := c.Locals(localSecret).(string)

	user, err := h.identity.User(c.UserContext(), secret)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, apperror.ErrUserNotFound.Code)
		}
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":         true,
		"id":         user.ID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"session":    user.SessionPointer,
	})
}

// GetUserStatus returns the authenticated user joined with the session their
// pointer references.
func (h *Handler) GetUserStatus(c *fiber.Ctx) error {
	secret, _ := c.Locals(localSecret).(string)

	status, err := h.identity.UserWithStatus(c.UserContext(), secret)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, apperror.ErrUserNotFound.Code)
		}
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":   true,
		"user": dto.FromUserStatus(status),
	})
}

// CreateUser is admin-only; it registers a new user and mints their first
// api key in the same transaction.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var input dto.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidUserData.Code)
	}

	user, err := h.identity.CreateUser(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrInvalidUserData):
			return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidUserData.Code)
		case errors.Is(err, apperror.ErrPasswordInUse):
			return errorResponse(c, fiber.StatusConflict, apperror.ErrPasswordInUse.Code)
		default:
			return unknownErrorResponse(c, h.log, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":   true,
		"user": dto.FromUser(user),
	})
}

// ChangePassword re-keys the caller to a new password. Collisions with an
// existing user's password are reported as password_in_use with nothing
// mutated.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	secret, _ := c.Locals(localSecret).(string)

	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil || input.NewPassword == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoPasswordProvided.Code)
	}

	if err := h.identity.ChangeSecret(c.UserContext(), secret, input.NewPassword); err != nil {
		if errors.Is(err, apperror.ErrPasswordInUse) {
			return errorResponse(c, fiber.StatusConflict, apperror.ErrPasswordInUse.Code)
		}
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok": true,
	})
}

// DeleteUser is admin-only. The user's sessions survive as history; their
// credentials do not. Deleting a user that is already gone is a soft
// no-op: 202 with a warning rather than a failure.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	var input dto.DeleteUserInput
	if err := c.BodyParser(&input); err != nil || input.Password == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoPasswordProvided.Code)
	}

	if err := h.identity.DeleteUser(c.UserContext(), input.Password); err != nil {
		if errors.Is(err, apperror.ErrAlreadyDeleted) {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"ok":      true,
				"warning": apperror.WarningAlreadyDeleted,
			})
		}
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok": true,
	})
}
