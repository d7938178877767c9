package handler

import (
	"log/slog"

	"github.com/malee31/TimesheetManagementServer/internal/timesheet/service"
)

// Handler is the thin HTTP glue over the core services. It parses bodies,
// maps stable error codes to statuses, and produces no business logic of its
// own.
type Handler struct {
	credentials *service.CredentialService
	sessions    *service.SessionService
	identity    *service.IdentityService
	log         *slog.Logger
}

func NewHandler(credentials *service.CredentialService, sessions *service.SessionService, identity *service.IdentityService, log *slog.Logger) *Handler {
	return &Handler{
		credentials: credentials,
		sessions:    sessions,
		identity:    identity,
		log:         log,
	}
}
