package router

import (
	"github.com/jolivares/cuaderno/internal/application"
	"github.com/jolivares/cuaderno/internal/container"
	pginfra "github.com/jolivares/cuaderno/internal/infrastructure/postgres"
	handlers "github.com/jolivares/cuaderno/internal/interface/http"
	"github.com/jolivares/cuaderno/internal/interface/middleware"
	"github.com/jolivares/cuaderno/internal/router/modules"
)

// InitModules constructs the repositories, services and handlers from the
// container singletons and registers every feature module. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	sessions := container.GetSessions()

	userRepo := pginfra.NewUserRepository(pool)
	noteRepo := pginfra.NewNoteRepository(pool)
	contactRepo := pginfra.NewContactMessageRepository(pool)

	authSvc := application.NewAuthService(
		userRepo,
		container.GetCreds(),
		sessions,
		container.GetVerify(),
		container.GetAudit(),
		logger,
		application.LockoutPolicy{Threshold: cfg.LockoutThreshold, Duration: cfg.LockoutDuration},
	)
	userSvc := application.NewUserService(
		userRepo,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetMailPub(),
		container.GetVerify(),
		cfg.VerifyURL,
		logger,
	)
	noteSvc := application.NewNoteService(noteRepo, container.GetAudit(), logger, container.GetES(), cfg.ESNotesIndex)
	contactSvc := application.NewContactService(contactRepo, container.GetMailPub(), cfg.ContactInbox, logger)

	userHandler := handlers.NewUserHandler(authSvc, userSvc, sessions, logger)
	noteHandler := handlers.NewNoteHandler(noteSvc, sessions, logger)
	contactHandler := handlers.NewContactHandler(contactSvc, sessions, logger)
	pageHandler := handlers.NewPageHandler(sessions)

	// Every route sees the resolved session before its own gates run.
	r.Use(middleware.LoadSession(sessions, authSvc, logger))

	r.Add(modules.NewPagesModule(pageHandler, contactHandler))
	r.Add(modules.NewUserModule(userHandler))
	r.Add(modules.NewNoteModule(noteHandler))
}
