package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/store"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{
			Slug: "react-author", Name: "React Author",
			Kind: catalog.KindAgent, Tier: catalog.TierSpecialized,
			Applicability: catalog.Applicability{
				Languages:  []string{"javascript", "typescript"},
				Frameworks: []string{"react"},
			},
		},
		{
			Slug: "reviewer", Name: "Code Reviewer",
			Kind: catalog.KindAgent, Tier: catalog.TierBasic,
		},
		{
			Slug: "commit-skill", Name: "Commit Messages",
			Kind: catalog.KindSkill, Tier: catalog.TierBasic,
		},
	})
	require.NoError(t, err)
	return cat
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	scanner, err := project.NewScanner()
	require.NoError(t, err)

	srv, err := New(&Config{Host: "127.0.0.1", Port: 7340}, testCatalog(t), scanner, st)
	require.NoError(t, err)
	return srv, st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Host: "127.0.0.1", Port: 7340}, false},
		{"empty host", Config{Port: 7340}, true},
		{"port too low", Config{Host: "127.0.0.1", Port: 0}, true},
		{"port too high", Config{Host: "127.0.0.1", Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []catalog.Item `json:"items"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Items, 3)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/catalog?kind=skill", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "commit-skill", list.Items[0].Slug)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/catalog/reviewer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item catalog.Item
	decode(t, rec, &item)
	assert.Equal(t, "Code Reviewer", item.Name)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/catalog/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []catalog.Category `json:"categories"`
	}
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Categories)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	// A real directory so the initial scan succeeds.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"dependencies": {"react": "^18.0.0"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.jsx"), []byte("export {}\n"), 0o644))

	rec := doJSON(t, handler, http.MethodPost, "/api/projects",
		map[string]string{"name": "webshop", "path": dir})
	require.Equal(t, http.StatusCreated, rec.Code)

	var proj store.Project
	decode(t, rec, &proj)
	require.NotEmpty(t, proj.ID)
	assert.True(t, proj.ScannedAt.Valid, "creation should scan immediately")

	rec = doJSON(t, handler, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+proj.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+proj.ID+"/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile project.Profile
	decode(t, rec, &profile)
	assert.Contains(t, profile.Frameworks, "react")

	// Suggestions favor the react specialist for this profile.
	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+proj.ID+"/suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sugg struct {
		Suggestions []struct {
			Item        catalog.Item `json:"item"`
			Score       int          `json:"score"`
			Recommended bool         `json:"recommended"`
		} `json:"suggestions"`
	}
	decode(t, rec, &sugg)
	require.NotEmpty(t, sugg.Suggestions)
	assert.Equal(t, "react-author", sugg.Suggestions[0].Item.Slug)
	assert.True(t, sugg.Suggestions[0].Recommended)

	// Add the suggested item; it disappears from the next query.
	rec = doJSON(t, handler, http.MethodPost, "/api/projects/"+proj.ID+"/items",
		map[string]string{"slug": "react-author"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+proj.ID+"/suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &sugg)
	for _, s := range sugg.Suggestions {
		assert.NotEqual(t, "react-author", s.Item.Slug)
	}

	// Browse-all returns the whole catalog minus the added item.
	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+proj.ID+"/suggestions?all=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &sugg)
	assert.Len(t, sugg.Suggestions, 2)

	rec = doJSON(t, handler, http.MethodDelete, "/api/projects/"+proj.ID+"/items/react-author", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var activity struct {
		Activity []store.Activity `json:"activity"`
	}
	decode(t, rec, &activity)
	assert.NotEmpty(t, activity.Activity)
}

func TestCreateProjectValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/projects", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	for _, path := range []string{
		"/api/projects/ghost",
		"/api/projects/ghost/suggestions",
	} {
		rec := doJSON(t, handler, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/projects/ghost/items",
		map[string]string{"slug": "reviewer"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSuggestionsInvalidLimit(t *testing.T) {
	srv, st := newTestServer(t)

	proj, err := st.CreateProject(context.Background(), "p", t.TempDir())
	require.NoError(t, err)

	rec := doJSON(t, srv.Handler(), http.MethodGet,
		fmt.Sprintf("/api/projects/%s/suggestions?limit=abc", proj.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionsWithoutProfile(t *testing.T) {
	srv, st := newTestServer(t)

	proj, err := st.CreateProject(context.Background(), "p", t.TempDir())
	require.NoError(t, err)

	// Never scanned: no profile to serve, and the neutral ranking pass
	// recommends nothing.
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/projects/"+proj.ID+"/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/projects/"+proj.ID+"/suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sugg struct {
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	decode(t, rec, &sugg)
	assert.Empty(t, sugg.Suggestions)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
