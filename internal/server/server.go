package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/REGINA562/new-project/config"
	"github.com/REGINA562/new-project/internal/db"
	"github.com/REGINA562/new-project/internal/handlers"
	"github.com/REGINA562/new-project/internal/services"
	"github.com/REGINA562/new-project/internal/session"
	"github.com/REGINA562/new-project/internal/storage"
	"github.com/REGINA562/new-project/internal/store"
	"github.com/REGINA562/new-project/internal/uploads"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Default admin provisioned on first run with an empty users table.
// The password is temporary and must be changed after first login.
const (
	defaultAdminName     = "Admin"
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "adminpass"
	defaultAdminRole     = "admin"
)

const sessionReapInterval = time.Hour

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	logger     *zap.Logger
	stopReaper context.CancelFunc
}

// New constructs a Server with all dependencies wired. The database
// (which also backs the session store) must be reachable; there is no
// in-memory fallback.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	fileStore, err := storage.New(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := fileStore.Ensure(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("prepare upload storage: %w", err)
	}

	userRepo := store.NewUserRepository(dbConn)
	studentRepo := store.NewStudentRepository(dbConn)
	noteRepo := store.NewNoteRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo)
	noteService := services.NewNoteService(noteRepo)
	studentService := services.NewStudentService(studentRepo, noteRepo)

	sessions := session.NewManager(sessionRepo)
	saver := uploads.NewSaver(fileStore)

	if err := bootstrapAdmin(ctx, userService, logger); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	site := handlers.NewSite(sessions, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		handlers.MethodOverride,
	)

	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, site, authService)
	router.Route("/register", func(r chi.Router) {
		handlers.RegisterRouter(r, site, studentService, saver)
	})
	router.Route("/uploads", func(r chi.Router) {
		handlers.FilesRouter(r, site, fileStore)
	})

	router.Group(func(r chi.Router) {
		r.Use(site.RequireAuth)
		handlers.DashboardRouter(r, site, studentService, noteService)
		r.Route("/students", func(r chi.Router) {
			handlers.StudentRouter(r, site, studentService, noteService, saver)
		})
		r.Route("/notes", func(r chi.Router) {
			handlers.NoteRouter(r, site, studentService, noteService, saver)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	go reapSessions(reaperCtx, sessions, logger)

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		logger:     logger,
		stopReaper: stopReaper,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.stopReaper != nil {
		s.stopReaper()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.logger.Sync()
	return s.httpServer.Close()
}

// bootstrapAdmin provisions the default administrator when the users
// table is empty, so a fresh install can be logged into at all.
func bootstrapAdmin(ctx context.Context, users *services.UserService, logger *zap.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := services.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	_, err = users.Create(ctx, types.User{
		Name:         defaultAdminName,
		Email:        defaultAdminEmail,
		Role:         defaultAdminRole,
		PasswordHash: hash,
	})
	if err != nil {
		// Another instance may have won the race.
		if errors.Is(err, store.ErrDuplicate) {
			return nil
		}
		return err
	}

	logger.Warn("created default admin account with a temporary password — change it now",
		zap.String("email", defaultAdminEmail),
	)
	return nil
}

// reapSessions periodically deletes expired session rows. Reads already
// treat expired rows as absent; this only bounds table growth.
func reapSessions(ctx context.Context, sessions *session.Manager, logger *zap.Logger) {
	ticker := time.NewTicker(sessionReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaped, err := sessions.ReapExpired(ctx)
			if err != nil {
				logger.Warn("session reap failed", zap.Error(err))
				continue
			}
			if reaped > 0 {
				logger.Info("reaped expired sessions", zap.Int64("count", reaped))
			}
		}
	}
}
