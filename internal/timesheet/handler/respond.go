package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Every response body carries "ok" plus either the payload or a stable error
// code. Unknown failures are logged in full server-side and surfaced only as
// unknown_error.

func errorResponse(c *fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":    false,
		"error": code,
	})
}

func unknownErrorResponse(c *fiber.Ctx, log *slog.Logger, err error) error {
	log.Error("unexpected error while handling request", "method", c.Method(), "path", c.Path(), "error", err)

	return errorResponse(c, fiber.StatusInternalServerError, "unknown_error")
}
