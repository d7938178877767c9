package handler

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/service"
	"github.com/malee31/TimesheetManagementServer/pkg/token"
)

// Locals keys populated by the auth gate for downstream handlers.
const (
	localAPIKey = "apiKey"
	localSecret = "secret"
)

const bearerPrefix = "Bearer "

// AuthMiddleware is the ordered guard chain applied at the request boundary.
// RequireAuth always runs first and attaches the raw api key; RequireUser or
// RequireAdmin then classifies it.
type AuthMiddleware struct {
	credentials *service.CredentialService
	adminKey    string
	log         *slog.Logger
}

func NewAuthMiddleware(credentials *service.CredentialService, adminKey string, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{credentials: credentials, adminKey: adminKey, log: log}
}

func (m *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return errorResponse(c, fiber.StatusUnauthorized, apperror.ErrNotAuthed.Code)
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return errorResponse(c, fiber.StatusBadRequest, apperror.ErrInvalidAuthFormat.Code)
	}

	c.Locals(localAPIKey, auth[len(bearerPrefix):])

	return c.Next()
}

func (m *AuthMiddleware) RequireUser(c *fiber.Ctx) error {
	apiKey, _ := c.Locals(localAPIKey).(string)
	if !token.IsUserKey(apiKey) {
		return errorResponse(c, fiber.StatusUnauthorized, apperror.ErrInvalidAuthFormat.Code)
	}

	creds, err := m.credentials.Lookup(c.UserContext(), apiKey)
	if err != nil {
		return unknownErrorResponse(c, m.log, err)
	}
	if len(creds) == 0 {
		return errorResponse(c, fiber.StatusNotFound, apperror.ErrUserNotFound.Code)
	}
	if creds[0].Revoked {
		return errorResponse(c, fiber.StatusUnauthorized, apperror.ErrAuthRevoked.Code)
	}

	c.Locals(localSecret, creds[0].Secret)

	return c.Next()
}

func (m *AuthMiddleware) RequireAdmin(c *fiber.Ctx) error {
	apiKey, _ := c.Locals(localAPIKey).(string)
	if !token.IsAdminKey(apiKey) {
		return errorResponse(c, fiber.StatusUnauthorized, apperror.ErrInvalidAuthFormat.Code)
	}
	if apiKey != m.adminKey {
		return errorResponse(c, fiber.StatusUnauthorized, apperror.ErrInvalidAdminAuth.Code)
	}

	return c.Next()
}
