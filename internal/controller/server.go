// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"net/http"
	"time"

	"publishplane/internal/controller/handlers"
	"publishplane/internal/controller/middleware"
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server.
func New(addr string, store handlers.StoreFactory, metricsHandler http.Handler) *Server {
	h := handlers.New(store)
	authMW := middleware.AuthMiddleware(store)
	rateMW := middleware.RateLimitMiddleware()

	authed := func(handler http.HandlerFunc) http.Handler {
		return authMW(rateMW(handler))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	mux.HandleFunc("POST /tenants", h.CreateTenant)

	// Public authenticated apis
	mux.Handle("POST /articles", authed(h.CreateArticle))
	mux.Handle("GET /articles/{id}", authed(h.GetArticle))
	mux.Handle("POST /articles/{id}/evaluate", authed(h.EvaluateArticle))
	mux.Handle("POST /articles/{id}/schedule", authed(h.ScheduleArticle))

	mux.Handle("GET /schedules", authed(h.ListSchedules))
	mux.Handle("GET /schedules/{id}", authed(h.GetSchedule))
	mux.Handle("DELETE /schedules/{id}", authed(h.CancelSchedule))
	mux.Handle("POST /schedules/{id}/retry", authed(h.RetrySchedule))

	mux.Handle("GET /config", authed(h.GetConfig))
	mux.Handle("PUT /config", authed(h.UpdateConfig))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
