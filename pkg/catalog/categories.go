package catalog

import (
	_ "embed"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// Category is static display metadata for a catalog category. It is
// configuration data, not ranking logic: the ranker only compares
// category ids as strings.
type Category struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// Categories returns the category metadata table in declaration order.
func Categories() ([]Category, error) {
	var f categoryFile
	if err := yaml.Unmarshal(categoriesYAML, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse category metadata")
	}
	return f.Categories, nil
}

// CategoryByID looks up a category by its id.
func CategoryByID(id string) (Category, bool) {
	cats, err := Categories()
	if err != nil {
		return Category{}, false
	}
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
