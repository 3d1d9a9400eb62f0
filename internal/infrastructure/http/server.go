package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rezkam/almanac/internal/config"
	mw "github.com/rezkam/almanac/internal/infrastructure/http/middleware"
)

// APIServer wraps the HTTP server with router and all HTTP concerns.
type APIServer struct {
	server *http.Server
}

// NewAPIServer creates a new HTTP server with router and middleware
// configured. The apiHandler is mounted at the root.
func NewAPIServer(apiHandler http.Handler, cfg config.HTTPConfig) *APIServer {
	router := setupRouter(apiHandler, cfg)
	httpServer := setupHTTPServer(router, cfg)

	return &APIServer{
		server: httpServer,
	}
}

// setupRouter creates and configures the chi router with all middleware and routes.
func setupRouter(apiHandler http.Handler, cfg config.HTTPConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.ErrorContext(r.Context(), "Failed to write health check response", "error", err)
		}
	})

	r.Mount("/", apiHandler)

	return r
}

// setupHTTPServer creates the net/http.Server with the given router and config.
func setupHTTPServer(router *chi.Mux, cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// Start starts the HTTP server.
func (s *APIServer) Start() error {
	slog.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
// The provided context controls the timeout for outstanding requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler for testing purposes.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
