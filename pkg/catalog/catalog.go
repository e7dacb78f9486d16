package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// Catalog is an ordered, immutable collection of items. The insertion
// order is deterministic for a given set of sources and serves as the
// ranker's tiebreak key, so it must be preserved.
type Catalog struct {
	items  []Item
	bySlug map[string]int
}

// New builds a catalog from items in the given order. Duplicate slugs
// are rejected; the caller (the loader) is responsible for precedence.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items:  make([]Item, 0, len(items)),
		bySlug: make(map[string]int, len(items)),
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.bySlug[it.Slug]; exists {
			return nil, errors.Errorf("duplicate item slug '%s'", it.Slug)
		}
		c.bySlug[it.Slug] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// Items returns a copy of the catalog entries in insertion order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// ItemsOfKind returns entries of the given kind in insertion order.
func (c *Catalog) ItemsOfKind(kind Kind) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Get returns the item with the given slug.
func (c *Catalog) Get(slug string) (Item, bool) {
	idx, ok := c.bySlug[slug]
	if !ok {
		return Item{}, false
	}
	return c.items[idx], true
}

// GetByName returns the item with the given display name, compared
// case-insensitively. Names are unique within a catalog.
func (c *Catalog) GetByName(name string) (Item, bool) {
	lower := strings.ToLower(name)
	for _, it := range c.items {
		if strings.ToLower(it.Name) == lower {
			return it, true
		}
	}
	return Item{}, false
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Version returns a digest of the catalog contents. Callers use it as
// a cache key for memoized ranking runs; it changes whenever the item
// set or order changes.
func (c *Catalog) Version() string {
	h := sha256.New()
	for _, it := range c.items {
		h.Write([]byte(it.Slug))
		h.Write([]byte{0})
		h.Write([]byte(it.Name))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
