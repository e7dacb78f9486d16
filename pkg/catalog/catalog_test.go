package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem(slug, name string) Item {
	return Item{
		Slug: slug,
		Name: name,
		Kind: KindAgent,
		Tier: TierBasic,
	}
}

func TestNewRejectsDuplicateSlugs(t *testing.T) {
	_, err := New([]Item{
		validItem("dup", "First"),
		validItem("dup", "Second"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate item slug")
}

func TestNewRejectsInvalidItems(t *testing.T) {
	_, err := New([]Item{{Name: "No Slug", Kind: KindAgent, Tier: TierBasic}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSlug)
}

func TestItemsPreservesOrderAndIsACopy(t *testing.T) {
	cat, err := New([]Item{
		validItem("c", "C"),
		validItem("a", "A"),
		validItem("b", "B"),
	})
	require.NoError(t, err)

	items := cat.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].Slug)
	assert.Equal(t, "a", items[1].Slug)
	assert.Equal(t, "b", items[2].Slug)

	items[0].Slug = "mutated"
	again := cat.Items()
	assert.Equal(t, "c", again[0].Slug)
}

func TestItemsOfKind(t *testing.T) {
	skill := validItem("s", "S")
	skill.Kind = KindSkill

	cat, err := New([]Item{validItem("a", "A"), skill, validItem("b", "B")})
	require.NoError(t, err)

	skills := cat.ItemsOfKind(KindSkill)
	require.Len(t, skills, 1)
	assert.Equal(t, "s", skills[0].Slug)

	agents := cat.ItemsOfKind(KindAgent)
	assert.Len(t, agents, 2)
}

func TestGetByNameIsCaseInsensitive(t *testing.T) {
	cat, err := New([]Item{validItem("reviewer", "Code Reviewer")})
	require.NoError(t, err)

	item, ok := cat.GetByName("code reviewer")
	require.True(t, ok)
	assert.Equal(t, "reviewer", item.Slug)

	_, ok = cat.GetByName("unknown")
	assert.False(t, ok)
}

func TestVersionChangesWithContent(t *testing.T) {
	cat1, err := New([]Item{validItem("a", "A"), validItem("b", "B")})
	require.NoError(t, err)
	cat2, err := New([]Item{validItem("a", "A"), validItem("b", "B")})
	require.NoError(t, err)
	cat3, err := New([]Item{validItem("b", "B"), validItem("a", "A")})
	require.NoError(t, err)

	assert.Equal(t, cat1.Version(), cat2.Version())
	assert.NotEqual(t, cat1.Version(), cat3.Version(), "order is part of the version")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr string
	}{
		{"valid", validItem("ok", "OK"), ""},
		{"missing slug", Item{Name: "X", Kind: KindAgent, Tier: TierBasic}, "missing required slug"},
		{"blank slug", Item{Slug: "   ", Name: "X", Kind: KindAgent, Tier: TierBasic}, "missing required slug"},
		{"missing name", Item{Slug: "x", Kind: KindAgent, Tier: TierBasic}, "missing a name"},
		{"bad kind", Item{Slug: "x", Name: "X", Kind: "wizard", Tier: TierBasic}, "unsupported kind"},
		{"bad tier", Item{Slug: "x", Name: "X", Kind: KindAgent, Tier: "mythic"}, "unsupported tier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCategories(t *testing.T) {
	cats, err := Categories()
	require.NoError(t, err)
	assert.NotEmpty(t, cats)

	seen := make(map[string]bool)
	for _, c := range cats {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.False(t, seen[c.ID], "duplicate category id %s", c.ID)
		seen[c.ID] = true
	}

	first, ok := CategoryByID(cats[0].ID)
	require.True(t, ok)
	assert.Equal(t, cats[0], first)

	_, ok = CategoryByID("nope")
	assert.False(t, ok)
}
