package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/agentdeckhq/agentdeck/pkg/logger"
)

// Loader discovers item definitions from configured directories and
// the embedded builtin set. Precedence is repo-local > user-global >
// builtin: the first definition seen for a slug wins.
type Loader struct {
	itemDirs       []string
	includeBuiltin bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithItemDirs sets custom catalog directories, highest precedence first.
func WithItemDirs(dirs ...string) LoaderOption {
	return func(l *Loader) error {
		if len(dirs) == 0 {
			return errors.New("at least one catalog directory must be specified")
		}
		l.itemDirs = dirs
		return nil
	}
}

// WithDefaultDirs sets the default catalog directories
// (./.agentdeck/catalog, ~/.agentdeck/catalog).
func WithDefaultDirs() LoaderOption {
	return func(l *Loader) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		l.itemDirs = []string{
			"./.agentdeck/catalog",
			filepath.Join(homeDir, ".agentdeck", "catalog"),
		}
		return nil
	}
}

// WithoutBuiltin disables the embedded builtin items. Used by tests
// and by deployments that ship a fully custom catalog.
func WithoutBuiltin() LoaderOption {
	return func(l *Loader) error {
		l.includeBuiltin = false
		return nil
	}
}

// NewLoader creates a catalog loader with optional configuration.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{includeBuiltin: true}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(l); err != nil {
			return nil, errors.Wrap(err, "failed to apply default catalog directories")
		}
		return l, nil
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, errors.Wrap(err, "failed to apply catalog loader option")
		}
	}

	return l, nil
}

// Load reads all item definitions and assembles the session catalog.
// Malformed entries are skipped with a warning; their errors are
// collected and returned alongside the catalog so callers can surface
// them without failing the whole load.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var items []Item
	var loadErrs *multierror.Error
	seen := make(map[string]bool)
	seenNames := make(map[string]string)

	appendItem := func(it Item) {
		if seen[it.Slug] {
			return
		}
		if prev, dup := seenNames[strings.ToLower(it.Name)]; dup {
			logger.G(ctx).WithFields(map[string]interface{}{
				"slug": it.Slug,
				"name": it.Name,
				"dup":  prev,
			}).Warn("Item name collides with an existing item, skipping")
			loadErrs = multierror.Append(loadErrs,
				errors.Errorf("item '%s' duplicates name '%s' of item '%s'", it.Slug, it.Name, prev))
			return
		}
		seen[it.Slug] = true
		seenNames[strings.ToLower(it.Name)] = it.Slug
		items = append(items, it)
	}

	for _, dir := range l.itemDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).Debug("Catalog directory not found, skipping")
			continue
		}

		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			names = append(names, entry.Name())
		}
		// Sorted load order keeps the catalog order (the ranker's
		// tiebreak key) stable across platforms.
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(dir, name)
			item, err := l.loadItemFile(path)
			if err != nil {
				logger.G(ctx).WithField("path", path).WithError(err).Warn("Failed to load catalog item, skipping")
				loadErrs = multierror.Append(loadErrs, errors.Wrapf(err, "item file %s", path))
				continue
			}
			appendItem(*item)
		}
	}

	if l.includeBuiltin {
		builtin, err := builtinItems()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load builtin catalog")
		}
		for _, it := range builtin {
			appendItem(it)
		}
	}

	cat, err := New(items)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assemble catalog")
	}

	logger.G(ctx).WithField("count", cat.Len()).Info("Loaded catalog")
	return cat, loadErrs.ErrorOrNil()
}

// loadItemFile parses a single item definition file.
func (l *Loader) loadItemFile(path string) (*Item, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read item file")
	}

	item, err := parseItem(string(content))
	if err != nil {
		return nil, err
	}

	item.Source = path
	if item.Slug == "" {
		// Fall back to the file name before enforcing the contract so
		// hand-written files without an explicit slug still load.
		item.Slug = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	if err := finalize(item); err != nil {
		return nil, err
	}
	return item, nil
}

// parseItem extracts frontmatter metadata and body from an item
// definition.
func parseItem(content string) (*Item, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	item := &Item{}
	if slug, ok := metaData["slug"].(string); ok {
		item.Slug = slug
	}
	if name, ok := metaData["name"].(string); ok {
		item.Name = name
	}
	if description, ok := metaData["description"].(string); ok {
		item.Description = description
	}
	if kind, ok := metaData["kind"].(string); ok {
		item.Kind = Kind(kind)
	}
	if tier, ok := metaData["tier"].(string); ok {
		item.Tier = Tier(tier)
	}
	if category, ok := metaData["category"].(string); ok {
		item.Category = category
	}

	item.Applicability = Applicability{
		Languages:    parseStringArrayField(metaData["languages"]),
		Frameworks:   parseStringArrayField(metaData["frameworks"]),
		ProjectTypes: parseStringArrayField(metaData["project_types"]),
		Tooling:      parseStringArrayField(metaData["tooling"]),
	}

	item.Body = extractBodyContent(content)
	return item, nil
}

// finalize applies defaults and validates the parsed item.
func finalize(item *Item) error {
	if item.Name == "" {
		item.Name = item.Slug
	}
	if item.Kind == "" {
		item.Kind = KindAgent
	}
	if item.Tier == "" {
		item.Tier = TierBasic
	}
	return item.Validate()
}

// parseStringArrayField handles both []interface{} (YAML array) and
// string (comma-separated) formats.
func parseStringArrayField(field interface{}) []string {
	switch v := field.(type) {
	case []interface{}:
		var result []string
		for _, entry := range v {
			if str, ok := entry.(string); ok {
				if trimmed := strings.ToLower(strings.TrimSpace(str)); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
		return result
	case string:
		var result []string
		for _, entry := range strings.Split(v, ",") {
			if trimmed := strings.ToLower(strings.TrimSpace(entry)); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return nil
	}
}

// extractBodyContent returns the markdown body after the YAML frontmatter.
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
