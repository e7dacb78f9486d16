// Package suggest is the consumer side of the ranker: it runs ranking
// over the session catalog, applies the caller's exclusion rules, and
// truncates to the top suggestions for display. Exclusion of already
// added items lives here, not in the ranker, so different surfaces
// (agents, skills, teams) can apply their own rules over one ranking
// pass.
package suggest

import (
	"strings"
	"sync"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/ranker"
)

// DefaultLimit is how many suggestions a surface shows by default.
const DefaultLimit = 5

// Request describes one suggestion query.
type Request struct {
	// Kind restricts results to one item kind. Empty means all kinds.
	Kind catalog.Kind
	// ExistingNames are display names already in the user's active
	// set; matching items are excluded case-insensitively.
	ExistingNames []string
	// Limit caps the number of results. Zero means DefaultLimit;
	// negative means unlimited.
	Limit int
	// IncludeUnrecommended also returns items below the recommendation
	// gate, for "browse all" surfaces.
	IncludeUnrecommended bool
}

// Service memoizes ranking runs keyed on (catalog version, profile
// version). The ranker itself holds no cache; this layer exists so
// every surface re-querying per render does not recompute the pass.
type Service struct {
	mu       sync.Mutex
	cacheKey string
	cached   []ranker.ScoredItem
}

// NewService creates a suggestion service.
func NewService() *Service {
	return &Service{}
}

// Ranked returns the full scored catalog for the profile, reusing the
// previous result when neither the catalog nor the profile changed.
func (s *Service) Ranked(cat *catalog.Catalog, profile *project.Profile) []ranker.ScoredItem {
	key := cat.Version() + "/" + profile.Version()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cacheKey != key {
		s.cached = ranker.Rank(cat.Items(), profile)
		s.cacheKey = key
	}

	out := make([]ranker.ScoredItem, len(s.cached))
	copy(out, s.cached)
	return out
}

// Suggestions runs a suggestion query against the catalog and profile.
func (s *Service) Suggestions(cat *catalog.Catalog, profile *project.Profile, req Request) []ranker.ScoredItem {
	return Filter(s.Ranked(cat, profile), req)
}

// Filter applies a request's exclusion, kind, gate, and limit rules to
// an already ranked list. It never reorders entries.
func Filter(ranked []ranker.ScoredItem, req Request) []ranker.ScoredItem {
	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	existing := make(map[string]bool, len(req.ExistingNames))
	for _, name := range req.ExistingNames {
		existing[strings.ToLower(name)] = true
	}

	var out []ranker.ScoredItem
	for _, entry := range ranked {
		if req.Kind != "" && entry.Item.Kind != req.Kind {
			continue
		}
		if existing[strings.ToLower(entry.Item.Name)] {
			continue
		}
		if !req.IncludeUnrecommended && !entry.Recommended {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
