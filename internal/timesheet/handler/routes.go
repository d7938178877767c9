package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *Handler, m *AuthMiddleware) {
	user := app.Group("/user")
	user.Get("/", m.RequireAuth, m.RequireUser, h.GetUser)
	user.Post("/", m.RequireAuth, m.RequireAdmin, h.CreateUser)
	user.Get("/status", m.RequireAuth, m.RequireUser, h.GetUserStatus)
	user.Put("/password", m.RequireAuth, m.RequireUser, h.ChangePassword)
	user.Delete("/", m.RequireAuth, m.RequireAdmin, h.DeleteUser)
	user.Get("/sessions", m.RequireAuth, m.RequireUser, h.ListUserSessions)
	user.Post("/sessions", m.RequireAuth, m.RequireAdmin, h.CreateSession)

	auth := user.Group("/auth")
	auth.Post("/exchange", h.Exchange)
	auth.Post("/revoke", m.RequireAuth, m.RequireUser, h.Revoke)

	session := user.Group("/session")
	session.Get("/latest", m.RequireAuth, m.RequireUser, h.LatestSession)
	session.Patch("/latest", m.RequireAuth, m.RequireUser, h.PatchLatestSession)
	session.Delete("/:sessionid", m.RequireAuth, m.RequireAdmin, h.DeleteSession)

	users := app.Group("/users")
	users.Get("/", h.GetAllUsers)
	users.Get("/status", h.GetAllUsersWithStatus)
	users.Get("/sessions", m.RequireAuth, m.RequireAdmin, h.ListAllSessions)
}
