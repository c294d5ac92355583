// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matthewbaird/sughar/internal/auth"
	"github.com/matthewbaird/sughar/internal/dashboard"
	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/handler"
)

// Config holds server configuration.
type Config struct {
	Port         int
	Store        docstore.Store
	JWTSecret    string
	Location     *time.Location
	LiveInterval time.Duration
	// AccessLog receives one line per request; nil means stderr.
	AccessLog io.Writer
}

// NewRouter registers every route on a chi router.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(newRequestLogger(cfg.AccessLog))
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	svc := dashboard.NewService(cfg.Store, cfg.Location)
	dh := handler.NewDashboardHandler(svc)
	interval := cfg.LiveInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	live := handler.NewLiveHandler(svc, interval)

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))
		r.Get("/stats", dh.HandleStats)
		r.Get("/financial-stats", dh.HandleFinancialStats)
		r.Handle("/live", live)
	})
	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
	}()

	log.Printf("server: listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
