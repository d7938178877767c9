package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/dto"
)

// GetAllUsers lists every user without secrets or session details.
func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.identity.AllUsers(c.UserContext())
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":    true,
		"users": dto.FromUsers(users),
	})
}

// GetAllUsersWithStatus lists every user joined with the session their
// pointer references.
func (h *Handler) GetAllUsersWithStatus(c *fiber.Ctx) error {
	users, err := h.identity.AllUsersWithStatus(c.UserContext())
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":    true,
		"users": dto.FromUserStatuses(users),
	})
}

// ListAllSessions is admin-only pagination over every session row, sorted by
// session id. Pages are 1-based.
func (h *Handler) ListAllSessions(c *fiber.Ctx) error {
	countStr := c.Query("count")
	if countStr == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoCountProvided.Code)
	}
	pageStr := c.Query("page")
	if pageStr == "" {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrNoPageProvided.Code)
	}

	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidCount.Code)
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidPageNumber.Code)
	}

	sessions, err := h.sessions.ListAll(c.UserContext(), count, page)
	if err != nil {
		return unknownErrorResponse(c, h.log, err)
	}
	if len(sessions) == 0 {
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
