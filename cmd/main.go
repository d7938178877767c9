package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/malee31/TimesheetManagementServer/config"
	"github.com/malee31/TimesheetManagementServer/db"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/handler"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/repository/gormstore"
	repo "github.com/malee31/TimesheetManagementServer/internal/timesheet/repository/postgres"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/service"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	var repository domain.Repository
	switch cfg.StoreBackend {
	case "gorm":
		gdb, err := db.NewGormDB(cfg.DBURL)
		if err != nil {
			log.Fatalf("failed to open gorm store: %v", err)
		}
		repository = gormstore.NewRepository(gdb)
	default:
		pool, err := db.NewPostgresPool(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to open connection pool: %v", err)
		}
		defer pool.Close()
		repository = repo.NewRepository(pool)
	}

	credentialService := service.NewCredentialService(repository, logger)
	sessionService := service.NewSessionService(repository, logger)
	identityService := service.NewIdentityService(repository, logger)

	h := handler.NewHandler(credentialService, sessionService, identityService, logger)
	m := handler.NewAuthMiddleware(credentialService, cfg.AdminKey, logger)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		logger.Info("request", "method", c.Method(), "path", c.Path(), "ip", c.IP())
		return c.Next()
	})
	handler.RegisterRoutes(app, h, m)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
