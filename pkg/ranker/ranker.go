// Package ranker scores catalog items against a project profile and
// produces a ranked, annotated list for the suggestion surfaces.
//
// Rank is a pure function of (items, profile): no I/O, no mutation of
// inputs, and identical inputs always produce the identical output
// sequence, including tie order. It is safe to call concurrently.
package ranker

import (
	"sort"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/project"
)

// Signal is a fixed relevance dimension matched between an item's
// declared applicability and the project profile.
type Signal int

const (
	SignalLanguage Signal = iota
	SignalFramework
	SignalProjectType
	SignalTooling
)

// String returns the display name of a signal.
func (s Signal) String() string {
	switch s {
	case SignalLanguage:
		return "language"
	case SignalFramework:
		return "framework"
	case SignalProjectType:
		return "project type"
	case SignalTooling:
		return "tooling"
	default:
		return "unknown"
	}
}

// Weight table. Scores are integer points clamped to [0, MaxScore].
//
// Each language or framework match is worth its dimension weight once;
// additional matches in the same dimension add ExtraMatchBonus each,
// so more matching signals always score at least as high as fewer.
const (
	// WeightLanguage is granted for the first language match.
	WeightLanguage = 30
	// WeightFramework is granted for the first framework match.
	WeightFramework = 35
	// WeightProjectType is granted when the item lists the profile's project type.
	WeightProjectType = 15
	// WeightTooling is granted per matching tooling signal.
	WeightTooling = 5
	// ExtraMatchBonus is granted per additional language or framework
	// match beyond the first in the same dimension.
	ExtraMatchBonus = 5
	// SpecializedFitBonus is granted when a specialized item matches a
	// language or framework signal: a specialized tool that fits the
	// stack beats a generic one.
	SpecializedFitBonus = 10

	// MaxScore bounds all scores.
	MaxScore = 100

	// RecommendThreshold is the gate above which an item is flagged as
	// recommended. Kept separate from GreatMatchThreshold: the gate
	// decides eligibility, the display threshold decides emphasis.
	RecommendThreshold = 55
	// GreatMatchThreshold marks an especially strong fit for display.
	GreatMatchThreshold = 80
)

// tierBaseline is the intrinsic score an item earns from its tier
// alone. Basic items carry the highest baseline so something sensible
// still surfaces when the profile is empty or absent.
var tierBaseline = map[catalog.Tier]int{
	catalog.TierBasic:       10,
	catalog.TierAdvanced:    6,
	catalog.TierSpecialized: 2,
}

// ScoredItem is one ranked output entry.
type ScoredItem struct {
	Item catalog.Item `json:"item"`
	// Score is the relevance score in [0, MaxScore].
	Score int `json:"score"`
	// Recommended reports score >= RecommendThreshold against a
	// non-nil profile. Never set when no profile exists, since no
	// relevance signal exists to recommend on.
	Recommended bool `json:"recommended"`
	// GreatMatch reports score >= GreatMatchThreshold. Display-only.
	GreatMatch bool `json:"greatMatch"`
	// Matched lists the signal dimensions that contributed, in
	// ascending Signal order. Empty for baseline-only scores.
	Matched []Signal `json:"-"`
}

// Rank scores every item against the profile and returns the full list
// ordered by descending score, ties broken by input position. Every
// input item appears exactly once. A nil profile yields the documented
// neutral pass: tier baseline scores, input order preserved within
// equal scores, and no recommendations.
func Rank(items []catalog.Item, profile *project.Profile) []ScoredItem {
	out := make([]ScoredItem, len(items))
	for i, item := range items {
		score, matched := Score(item, profile)
		out[i] = ScoredItem{
			Item:        item,
			Score:       score,
			Recommended: profile != nil && score >= RecommendThreshold,
			GreatMatch:  score >= GreatMatchThreshold,
			Matched:     matched,
		}
	}

	// Stable keeps input order as the deterministic tiebreak.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// Score computes the relevance score for a single (item, profile)
// pair and the signal dimensions that matched. Missing applicability
// tags contribute nothing; they are never an error.
func Score(item catalog.Item, profile *project.Profile) (int, []Signal) {
	score := tierBaseline[item.Tier]
	if profile == nil {
		return clamp(score), nil
	}

	var matched []Signal

	langMatches := countMatches(item.Applicability.Languages, profile.Languages)
	if langMatches > 0 {
		score += WeightLanguage + (langMatches-1)*ExtraMatchBonus
		matched = append(matched, SignalLanguage)
	}

	fwMatches := countMatches(item.Applicability.Frameworks, profile.Frameworks)
	if fwMatches > 0 {
		score += WeightFramework + (fwMatches-1)*ExtraMatchBonus
		matched = append(matched, SignalFramework)
	}

	if profile.Type != "" && profile.Type != project.TypeUnknown {
		if containsFold(item.Applicability.ProjectTypes, string(profile.Type)) {
			score += WeightProjectType
			matched = append(matched, SignalProjectType)
		}
	}

	toolMatches := countMatches(item.Applicability.Tooling, profile.Tooling)
	if toolMatches > 0 {
		score += toolMatches * WeightTooling
		matched = append(matched, SignalTooling)
	}

	if item.Tier == catalog.TierSpecialized && (langMatches > 0 || fwMatches > 0) {
		score += SpecializedFitBonus
	}

	return clamp(score), matched
}

// countMatches counts how many declared tags appear in the profile's
// detected values. Comparison is case-insensitive; tags are stored
// lower-cased by the catalog loader but callers may hand-build items.
func countMatches(declared, detected []string) int {
	if len(declared) == 0 || len(detected) == 0 {
		return 0
	}
	n := 0
	for _, tag := range declared {
		if containsFold(detected, tag) {
			n++
		}
	}
	return n
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if equalFold(s, needle) {
			return true
		}
	}
	return false
}

// equalFold is an ASCII-only case-insensitive compare; tag vocabulary
// is ASCII by construction.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
