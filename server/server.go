// Package server exposes table extraction over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tsawler/snaptable/internal/config"
	"github.com/tsawler/snaptable/ocr"
)

// Server is the HTTP API server for snaptable.
type Server struct {
	router     chi.Router
	recognizer ocr.Recognizer
	log        *slog.Logger
	cfg        *config.Config
	mcp        http.Handler
}

// Option configures optional parts of the server
type Option func(*Server)

// WithMCP mounts an MCP handler at /mcp
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// New creates and configures the HTTP server. The recognizer serves image
// selections and scanned PDF pages.
func New(cfg *config.Config, rec ocr.Recognizer, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		recognizer: rec,
		log:        log,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/tables", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))

		r.Post("/fragments", s.handleFragments)
		r.Post("/pdf", s.handlePDF)
		r.Post("/image", s.handleImage)
	})

	if s.mcp != nil {
		r.Handle("/mcp", s.mcp)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
