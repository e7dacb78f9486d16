package catalog

import (
	"embed"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// builtinItems parses the embedded builtin catalog. The embedded files
// ship with the binary and are the lowest-precedence item source.
func builtinItems() ([]Item, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read builtin catalog")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	items := make([]Item, 0, len(names))
	for _, name := range names {
		content, err := builtinFS.ReadFile("builtin/" + name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read builtin item %s", name)
		}

		item, err := parseItem(string(content))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse builtin item %s", name)
		}
		item.Source = "builtin:" + name
		if item.Slug == "" {
			item.Slug = strings.TrimSuffix(name, ".md")
		}
		if err := finalize(item); err != nil {
			return nil, errors.Wrapf(err, "invalid builtin item %s", name)
		}
		items = append(items, *item)
	}

	return items, nil
}
