// Package web serves the task board as a local server-rendered dashboard.
// One Server holds one pair of stores for its whole lifetime.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/config"
	"taskboard/internal/guard"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server is the web dashboard.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	stores  *store.Stores
	flash   *flash
	metrics *metrics
	pages   pages
	router  chi.Router
}

// New builds a dashboard over api. The session is unchecked until
// ListenAndServe (or CheckSession) runs.
func New(cfg *config.Config, api service.API, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		flash:   &flash{},
		metrics: newMetrics(),
		pages:   mustParsePages(),
	}
	s.stores = store.New(api, s.flash, logger)
	s.stores.Tasks.Subscribe(s.metrics.observeTasks)
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stores returns the stores behind the dashboard.
func (s *Server) Stores() *store.Stores {
	return s.stores
}

// CheckSession resolves the session with the backend.
func (s *Server) CheckSession(ctx context.Context) {
	if err := s.stores.Session.CheckSession(ctx); err != nil {
		s.logger.Info("session_unauthenticated", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("session_authenticated")
}

// ListenAndServe checks the session in the background and serves on addr
// until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.CheckSession(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server_listen", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server_shutdown")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	// Some handlers make two backend calls.
	r.Use(chimw.Timeout(2 * timeout))
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.middleware)
	r.Use(tracing)
	r.Use(sameOrigin(s.logger))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Get(store.RouteHome, s.home)
	r.Get(store.RouteLogin, s.loginForm)
	r.Get(store.RouteSignup, s.signupForm)
	r.Post("/logout", s.logout)

	limit := rateLimit(newLimiter(s.cfg.RateLimitRPS, loginBurst))
	r.With(limit).Post(store.RouteLogin, s.login)
	r.With(limit).Post(store.RouteSignup, s.signup)

	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(s.stores.Session, http.HandlerFunc(s.waiting), store.RouteHome))

		r.Get(store.RouteDashboard, s.dashboard)
		r.Get("/tasks/new", s.newTask)
		r.Post("/tasks", s.createTask)
		r.Get("/tasks/{id}/edit", s.editTask)
		r.Post("/tasks/{id}", s.updateTask)
		r.Post("/tasks/{id}/status", s.moveTask)
		r.Post("/tasks/{id}/delete", s.deleteTask)
	})

	return r
}
