package catalog

import (
	"sort"
)

// FunctionType is the declared output shape of a function.
type FunctionType string

const (
	FunctionTypeChat FunctionType = "chat"
	FunctionTypeJSON FunctionType = "json"
)

// Metric value kinds recognised by the builder. Float metrics carry threshold
// semantics; the rest are counted or joined without a cutoff.
const (
	MetricTypeBoolean       = "boolean"
	MetricTypeFloat         = "float"
	MetricTypeComment       = "comment"
	MetricTypeDemonstration = "demonstration"
)

// Variant is a configured implementation of a function.
type Variant struct {
	Model  string  `yaml:"model" validate:"required"`
	Weight float64 `yaml:"weight" validate:"gte=0"`
}

// Function is a named task definition with a declared output type.
type Function struct {
	Type        FunctionType       `yaml:"type" validate:"required,oneof=chat json"`
	Description string             `yaml:"description"`
	Variants    map[string]Variant `yaml:"variants" validate:"dive"`
}

// MetricConfig is the structured configuration attached to a metric. The
// struct stays comparable so derived-field writes can detect no-op updates.
type MetricConfig struct {
	Type     string `yaml:"type" validate:"required,oneof=boolean float comment demonstration"`
	Optimize string `yaml:"optimize" validate:"omitempty,oneof=min max"`
	Level    string `yaml:"level" validate:"omitempty,oneof=inference episode"`
}

// HasThreshold reports whether the metric's scores are compared against a
// numeric cutoff when selecting rows.
func (c *MetricConfig) HasThreshold() bool {
	return c != nil && c.Type == MetricTypeFloat
}

// Catalog is the read-only function/metric registry consumed by the builder.
// A zero Catalog is valid and resolves nothing.
type Catalog struct {
	Functions map[string]Function
	Metrics   map[string]MetricConfig
}

// Function resolves a function id. The second return is false when the id is
// empty or absent.
func (c Catalog) Function(id string) (Function, bool) {
	if id == "" {
		return Function{}, false
	}
	fn, ok := c.Functions[id]
	return fn, ok
}

// Metric resolves a metric id, returning a copy of its configuration so
// callers can hold it without aliasing the catalog.
func (c Catalog) Metric(id string) (*MetricConfig, bool) {
	if id == "" {
		return nil, false
	}
	cfg, ok := c.Metrics[id]
	if !ok {
		return nil, false
	}
	clone := cfg
	return &clone, true
}

// FunctionIDs returns a sorted list of function ids.
func (c Catalog) FunctionIDs() []string {
	ids := make([]string, 0, len(c.Functions))
	for id := range c.Functions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MetricIDs returns a sorted list of metric ids.
func (c Catalog) MetricIDs() []string {
	ids := make([]string, 0, len(c.Metrics))
	for id := range c.Metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VariantNames returns the sorted variant names for a function, or nil when
// the function does not resolve.
func (c Catalog) VariantNames(functionID string) []string {
	fn, ok := c.Function(functionID)
	if !ok || len(fn.Variants) == 0 {
		return nil
	}
	names := make([]string, 0, len(fn.Variants))
	for name := range fn.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
