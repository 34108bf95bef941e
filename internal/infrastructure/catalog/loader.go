package catalog

import (
	"fmt"
	"os"

	"github.com/kirillkom/commerce-reconciler/internal/core/normalize"
	"gopkg.in/yaml.v3"
)

// Load builds the normalization catalog. With a path it merges the YAML
// overlay over the built-in defaults; with an empty path it returns the
// defaults unchanged.
func Load(path string) (*normalize.Catalog, error) {
	cat := normalize.DefaultCatalog()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog overlay: %w", err)
	}

	var overlay normalize.Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse catalog overlay %s: %w", path, err)
	}

	cat.Merge(overlay)
	return cat, nil
}
