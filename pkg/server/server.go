// Package server provides the localhost JSON API the Agent Deck
// desktop frontend talks to: catalog browsing, project registration
// and scanning, suggestion queries, active-set management, and the
// activity feed.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/store"
	"github.com/agentdeckhq/agentdeck/pkg/suggest"
)

// Config holds the configuration for the API server.
type Config struct {
	Host string
	Port int
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server is the API server.
type Server struct {
	router    *mux.Router
	handler   http.Handler
	config    *Config
	catalog   *catalog.Catalog
	scanner   *project.Scanner
	store     *store.Store
	suggester *suggest.Service
	server    *http.Server
}

// New creates an API server over the given collaborators.
func New(config *Config, cat *catalog.Catalog, scanner *project.Scanner, st *store.Store) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router:    mux.NewRouter(),
		config:    config,
		catalog:   cat,
		scanner:   scanner,
		store:     st,
		suggester: suggest.NewService(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	api.HandleFunc("/catalog", s.handleListCatalog).Methods("GET")
	api.HandleFunc("/catalog/{slug}", s.handleGetCatalogItem).Methods("GET")
	api.HandleFunc("/categories", s.handleListCategories).Methods("GET")

	api.HandleFunc("/projects", s.handleListProjects).Methods("GET")
	api.HandleFunc("/projects", s.handleCreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", s.handleGetProject).Methods("GET")
	api.HandleFunc("/projects/{id}/profile", s.handleGetProfile).Methods("GET")
	api.HandleFunc("/projects/{id}/scan", s.handleScanProject).Methods("POST")
	api.HandleFunc("/projects/{id}/suggestions", s.handleSuggestions).Methods("GET")
	api.HandleFunc("/projects/{id}/items", s.handleListItems).Methods("GET")
	api.HandleFunc("/projects/{id}/items", s.handleAddItem).Methods("POST")
	api.HandleFunc("/projects/{id}/items/{slug}", s.handleRemoveItem).Methods("DELETE")

	api.HandleFunc("/activity", s.handleActivity).Methods("GET")

	// The CORS middleware wraps the router itself so OPTIONS preflights
	// are answered even for method/route combinations mux would reject.
	s.handler = s.loggingMiddleware(s.corsMiddleware(s.router))
}

// Handler exposes the middleware-wrapped router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.G(ctx).WithField("addr", addr).Info("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.statusCode,
			"duration": time.Since(start),
		}).Info("HTTP request")
	})
}

// corsMiddleware allows the desktop frontend (a local renderer with an
// http origin) to call the API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
