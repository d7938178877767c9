package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/dto"
)

// LatestSession returns the session the caller's pointer references.
func (h *Handler) LatestSession(c *fiber.Ctx) error {
	secret, _ := c.Locals(localSecret).(string)

	latest, err := h.sessions.Latest(c.UserContext(), secret)
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}
	if latest == nil {
		return errorResponse(c, fiber.StatusNotFound, apperror.ErrNoSessionFound.Code)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"session": dto.FromSession(latest),
	})
}

// PatchLatestSession drives the sign-in/sign-out state machine. Repeated
// sign-ins or sign-outs are no-ops reported with a warning instead of
// creating or mutating rows.
func (h *Handler) PatchLatestSession(c *fiber.Ctx) error {
	secret, _ := c.Locals(localSecret).(string)

	var input dto.PatchSessionInput
	if err := c.BodyParser(&input); err != nil || input.Method == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoSessionMethod.Code)
	}

	var session *dto.SessionOutput
	var warning string
	switch input.Method {
	case "sign_in":
		newSession, warn, err := h.sessions.SignIn(c.UserContext(), secret)
		if err != nil {
			return unknownErrorResponse(c, h.log, err)
		}
		warning = warn
		if newSession != nil {
			out := dto.FromSession(newSession)
			session = &out
		}
	case "sign_out":
		patched, warn, err := h.sessions.SignOut(c.UserContext(), secret)
		if err != nil {
			return unknownErrorResponse(c, h.log, err)
		}
		warning = warn
		if patched != nil {
			out := dto.FromSession(patched)
			session = &out
		}
	default:
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidSessionMethod.Code)
	}

	if warning != "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":      true,
			"warning": warning,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"session": session,
	})
}

// DeleteSession is admin-only and removes an arbitrary session row. Deleting
// a missing row still answers ok with a warning.
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("sessionid"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidSessionID.Code)
	}

	if err := h.sessions.DeleteByID(c.UserContext(), sessionID); err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"warning": apperror.WarningNothingToDelete,
			})
		}
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":             true,
		"old_session_id": sessionID,
	})
}

// ListUserSessions returns the caller's full session history.
func (h *Handler) ListUserSessions(c *fiber.Ctx) error {
	secret, _ := c.Locals(localSecret).(string)

	sessions, err := h.sessions.ListForSecret(c.UserContext(), secret)
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}
	if sessions == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":       true,
			"warning":  apperror.WarningNoResults,
			"sessions": []dto.SessionOutput{},
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":       true,
		"sessions": dto.FromSessions(sessions),
	})
}

// CreateSession is admin-only and inserts an arbitrary session row, moving
// the owner's session pointer to it.
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var input dto.CreateSessionInput
	if err := c.BodyParser(&input); err != nil || input.Password == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoPasswordProvided.Code)
	}
	if input.StartTime <= 0 {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidSessionTime.Code)
	}

	session, err := h.sessions.Create(c.UserContext(), input.Password, input.StartTime, input.EndTime, true)
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":      true,
		"session": dto.FromSession(session),
	})
}
