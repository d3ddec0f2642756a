package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the Tome web UI.
func NewServer(db *sql.DB, cfg *config.Config, logger *zap.Logger, version string) (*http.Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		renderer: NewRenderer(templateSub, version, logger),
		logger:   logger,
	}

	mux := http.NewServeMux()
	h.routes(mux)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	handler := securityHeaders(h.recoverPanics(requestLogger(logger, mux)))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.UIBind, cfg.UIPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// routes registers every UI route using Go 1.22+ pattern syntax.
func (h *Handlers) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/characters", http.StatusFound)
	})

	mux.HandleFunc("GET /characters", h.HandleList)
	mux.HandleFunc("GET /characters/new", h.HandleNew)
	mux.HandleFunc("POST /characters", h.HandleCreate)
	mux.HandleFunc("GET /characters/{id}", h.HandleSheet)
	mux.HandleFunc("GET /characters/{id}/edit", h.HandleEdit)
	mux.HandleFunc("POST /characters/{id}/edit", h.HandleUpdate)
	mux.HandleFunc("POST /characters/{id}/delete", h.HandleDelete)
	mux.HandleFunc("DELETE /characters/{id}", h.HandleDelete)

	mux.HandleFunc("POST /characters/{id}/hp", h.HandleHitPoints)
	mux.HandleFunc("POST /characters/{id}/rest", h.HandleRest)

	mux.HandleFunc("POST /characters/{id}/skills", h.HandleAddSkill)
	mux.HandleFunc("POST /characters/{id}/skills/seed", h.HandleSeedSkills)
	mux.HandleFunc("POST /skills/{id}/toggle", h.HandleToggleSkill)

	mux.HandleFunc("POST /characters/{id}/saves/seed", h.HandleSeedSaves)
	mux.HandleFunc("POST /saves/{id}/toggle", h.HandleToggleSave)

	mux.HandleFunc("POST /characters/{id}/features", h.HandleAddFeature)
	mux.HandleFunc("POST /features/{id}/use", h.HandleUseFeature)
	mux.HandleFunc("POST /features/{id}/remove", h.HandleRemoveFeature)

	mux.HandleFunc("POST /characters/{id}/traits", h.HandleAddTrait)
	mux.HandleFunc("POST /traits/{id}/remove", h.HandleRemoveTrait)

	mux.HandleFunc("POST /characters/{id}/items", h.HandleAddItem)
	mux.HandleFunc("POST /items/{id}/equip", h.HandleEquipItem)
	mux.HandleFunc("POST /items/{id}/remove", h.HandleRemoveItem)
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// recoverPanics turns a handler panic into the error page, which offers a
// reload link back to the page that failed.
func (h *Handlers) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				h.logger.Error("handler panic",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", v),
					zap.Stack("stack"),
				)
				h.renderer.renderError(w, r, errors.NewInternal(fmt.Errorf("unexpected error")))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("tome UI running", zap.String("url", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
