package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/ranker"
	"github.com/agentdeckhq/agentdeck/pkg/store"
	"github.com/agentdeckhq/agentdeck/pkg/suggest"
	"github.com/agentdeckhq/agentdeck/pkg/telemetry"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	kind := catalog.Kind(r.URL.Query().Get("kind"))

	var items []catalog.Item
	if kind == "" {
		items = s.catalog.Items()
	} else {
		items = s.catalog.ItemsOfKind(kind)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleGetCatalogItem(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	item, ok := s.catalog.Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("catalog item '%s' not found", slug))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := catalog.Categories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if req.Name == "" {
		req.Name = req.Path
	}

	ctx := r.Context()
	proj, err := s.store.CreateProject(ctx, req.Name, req.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Scan immediately so the first suggestions render with a profile.
	// A scan failure is non-fatal; the project stays registered.
	if profile, err := s.scanner.Scan(ctx, req.Path); err != nil {
		logger.G(ctx).WithField("project", proj.ID).WithError(err).Warn("Initial scan failed")
	} else if err := s.store.SaveProfile(ctx, proj.ID, profile); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	proj, err = s.store.GetProject(ctx, proj.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.store.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	proj, err := s.store.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}

	profile, err := proj.Profile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, errors.Errorf("project %s has not been scanned yet", proj.ID))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleScanProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proj, err := s.store.GetProject(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}

	profile, err := s.scanner.Scan(ctx, proj.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "scan failed"))
		return
	}
	if err := s.store.SaveProfile(ctx, proj.ID, profile); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proj, err := s.store.GetProject(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}

	profile, err := proj.Profile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	existing, err := s.store.ItemNames(ctx, proj.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	req := suggest.Request{
		Kind:          catalog.Kind(r.URL.Query().Get("kind")),
		ExistingNames: existing,
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid limit %q", limit))
			return
		}
		req.Limit = n
	}
	if r.URL.Query().Get("all") == "true" {
		req.IncludeUnrecommended = true
		if req.Limit == 0 {
			req.Limit = -1
		}
	}

	var results []ranker.ScoredItem
	err = telemetry.WithSpan(ctx, "server.suggestions", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx,
			attribute.String("project.id", proj.ID),
			attribute.Int("catalog.size", s.catalog.Len()),
		)
		results = s.suggester.Suggestions(s.catalog, profile, req)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": results,
		"profile":     profile,
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := mux.Vars(r)["id"]

	var req struct {
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}

	item, ok := s.catalog.Get(req.Slug)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("catalog item '%s' not found", req.Slug))
		return
	}

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		writeStoreError(w, err)
		return
	}

	if err := s.store.AddItem(ctx, projectID, item); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"slug": item.Slug})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.RemoveItem(r.Context(), vars["id"], vars["slug"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid limit %q", q))
			return
		}
		limit = n
	}

	entries, err := s.store.RecentActivity(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": entries})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
