package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var errEmptyDocument = errors.New("catalog: document is empty")

type fileSchema struct {
	Functions map[string]Function     `yaml:"functions"`
	Metrics   map[string]MetricConfig `yaml:"metrics"`
}

// Load reads and parses a catalog YAML file.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Catalog{}, errors.New("catalog: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML and validates every entry. Unknown function
// types or metric kinds fail fast so a misconfigured catalog never reaches a
// live form.
func Parse(data []byte) (Catalog, error) {
	if len(data) == 0 {
		return Catalog{}, errEmptyDocument
	}

	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	if len(file.Functions) == 0 && len(file.Metrics) == 0 {
		return Catalog{}, errEmptyDocument
	}

	vld := validator.New(validator.WithRequiredStructEnabled())
	for id, fn := range file.Functions {
		if err := vld.Struct(fn); err != nil {
			return Catalog{}, fmt.Errorf("catalog: function %q: %w", id, err)
		}
	}
	for id, metric := range file.Metrics {
		if err := vld.Struct(metric); err != nil {
			return Catalog{}, fmt.Errorf("catalog: metric %q: %w", id, err)
		}
	}

	return Catalog{
		Functions: file.Functions,
		Metrics:   file.Metrics,
	}, nil
}
