package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justestif/historia/internal/auth"
	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/optimistic"
	"github.com/justestif/historia/internal/store"
)

// workspaceSweepPeriod is how often workspaces of ended sessions are freed.
const workspaceSweepPeriod = 15 * time.Minute

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr        string
	TemplatesFS fs.FS
	StaticFS    fs.FS

	Repo     store.Repository
	Sessions SessionManager
	Auth     auth.Provider

	// LifeWeeks is the size of the life view, usually 5200 or 4160.
	LifeWeeks int
	// Notice is shown on every page when set.
	Notice string
	// Now defaults to time.Now.
	Now func() time.Time
	// JournalOptions are passed to every session's optimistic store.
	JournalOptions []optimistic.Option
}

// Server is the HTTP server for the web application.
type Server struct {
	router     chi.Router
	server     *http.Server
	templates  *Templates
	sessions   SessionManager
	workspaces *Workspaces
	handlers   *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Repo == nil || cfg.Sessions == nil || cfg.Auth == nil {
		return nil, errors.New("server needs a repository, a session manager and an auth provider")
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	workspaces := NewWorkspaces(cfg.Repo, cfg.JournalOptions...)
	router := chi.NewRouter()

	s := &Server{
		router:     router,
		templates:  templates,
		sessions:   cfg.Sessions,
		workspaces: workspaces,
		handlers:   NewHandlers(cfg, templates, workspaces),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ErrorLog:     logger.Standard(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.Standard(),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(staticFS fs.FS) {
	h := s.handlers

	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/", h.Home)

	// Auth routes
	s.router.Get("/auth/login", h.Login)
	s.router.Get("/callback", h.Callback)
	s.router.Post("/auth/logout", h.Logout)

	s.router.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/profile/new", h.NewProfile)
		r.Post("/profile", h.CreateProfile)
		r.Post("/profile/name", h.UpdateName)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/week/{n}", h.Week)
		r.Get("/partials/grid", h.GridPartial)
		r.Get("/api/grid", h.APIGrid)

		r.Post("/phases", h.CreatePhase)
		r.Post("/phases/{id}", h.UpdatePhase)
		r.Post("/phases/{id}/delete", h.DeletePhase)

		r.Post("/memories", h.CreateMemory)
		r.Post("/memories/{id}/delete", h.DeleteMemory)

		r.Post("/milestones", h.CreateMilestone)
		r.Post("/milestones/{id}/delete", h.DeleteMilestone)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logger.Info("starting server", "url", "http://"+s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and waits for pending journal
// writes.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.workspaces.Wait()
	return err
}

// SweepWorkspaces frees the workspaces of expired or deleted sessions every
// interval until ctx is done.
func (s *Server) SweepWorkspaces(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.workspaces.Sweep(ctx, s.sessions); n > 0 {
				logger.Debug("freed workspaces of ended sessions", "count", n)
			}
		}
	}
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	// Channel to receive shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.SweepWorkspaces(sweepCtx, workspaceSweepPeriod)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	select {
	case err := <-errCh:
		return err
	case <-stop:
		logger.Info("shutting down server")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
