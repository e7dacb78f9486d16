// Package catalog provides the static library of suggestable items
// (agents, skills, and teams) that Agent Deck surfaces to users. Items
// are defined as markdown files with YAML frontmatter and loaded once
// per session from the embedded builtin set plus local and global
// override directories.
package catalog

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies what sort of library item an entry is.
type Kind string

const (
	KindAgent Kind = "agent"
	KindSkill Kind = "skill"
	KindTeam  Kind = "team"
)

// ValidKinds lists all accepted item kinds.
var ValidKinds = []Kind{KindAgent, KindSkill, KindTeam}

// Tier classifies an item's sophistication level. Tier affects the
// baseline relevance score and presentation, not eligibility.
type Tier string

const (
	TierBasic       Tier = "basic"
	TierAdvanced    Tier = "advanced"
	TierSpecialized Tier = "specialized"
)

// ValidTiers lists all accepted item tiers.
var ValidTiers = []Tier{TierBasic, TierAdvanced, TierSpecialized}

// ErrMissingSlug is returned when an item definition has no slug. The
// slug is the one non-negotiable field; every other missing attribute
// degrades to "no signal" instead of failing the load.
var ErrMissingSlug = errors.New("item is missing required slug")

// Applicability declares which project characteristics an item is
// relevant to. All fields are optional; an empty field simply
// contributes no relevance signal.
type Applicability struct {
	Languages    []string `yaml:"languages,omitempty" json:"languages,omitempty"`
	Frameworks   []string `yaml:"frameworks,omitempty" json:"frameworks,omitempty"`
	ProjectTypes []string `yaml:"project_types,omitempty" json:"projectTypes,omitempty"`
	Tooling      []string `yaml:"tooling,omitempty" json:"tooling,omitempty"`
}

// Item is an immutable catalog entry.
type Item struct {
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Kind          Kind          `json:"kind"`
	Tier          Tier          `json:"tier"`
	Category      string        `json:"category,omitempty"`
	Applicability Applicability `json:"applicability"`
	// Body is the markdown content after the frontmatter: the agent
	// system prompt, skill instructions, or team composition notes.
	Body string `json:"-"`
	// Source is the file the item was loaded from, or "builtin".
	Source string `json:"-"`
}

// Validate checks the non-negotiable shape contract. A missing slug is
// a hard error (ErrMissingSlug); other problems are reported with
// enough context for the loader to skip the entry.
func (it *Item) Validate() error {
	if strings.TrimSpace(it.Slug) == "" {
		return ErrMissingSlug
	}
	if strings.TrimSpace(it.Name) == "" {
		return errors.Errorf("item '%s' is missing a name", it.Slug)
	}
	if !isValidKind(it.Kind) {
		return errors.Errorf("item '%s' has unsupported kind '%s'", it.Slug, it.Kind)
	}
	if !isValidTier(it.Tier) {
		return errors.Errorf("item '%s' has unsupported tier '%s'", it.Slug, it.Tier)
	}
	return nil
}

func isValidKind(k Kind) bool {
	for _, v := range ValidKinds {
		if k == v {
			return true
		}
	}
	return false
}

func isValidTier(t Tier) bool {
	for _, v := range ValidTiers {
		if t == v {
			return true
		}
	}
	return false
}
