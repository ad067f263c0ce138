// Package datasetform assembles an interactive dataset-builder flow: a user
// picks a function, metric, and decision threshold, previews how many
// inference/feedback rows the selection would include, and submits the
// selection to be materialized as a persisted dataset.
//
// The root package re-exports the builder constructor and common options so
// most callers only import this module's root plus pkg/catalog.
package datasetform

import (
	"log/slog"

	"github.com/goliatone/go-datasetform/pkg/builder"
	"github.com/goliatone/go-datasetform/pkg/catalog"
	"github.com/goliatone/go-datasetform/pkg/form"
	"github.com/goliatone/go-datasetform/pkg/preview"
	"github.com/goliatone/go-datasetform/pkg/submission"
)

// Builder orchestrates one dataset-builder form instance.
type Builder = builder.Builder

// Snapshot is the externally visible state of a builder.
type Snapshot = builder.Snapshot

// Option customises the builder configuration.
type Option = builder.Option

// New constructs a Builder over a catalog reference and the two external
// services.
func New(ref *catalog.Ref, counts preview.CountService, submitter submission.Service, options ...Option) (*Builder, error) {
	return builder.New(ref, counts, submitter, options...)
}

// LoadCatalog reads and parses a catalog YAML file.
func LoadCatalog(path string) (catalog.Catalog, error) {
	return catalog.Load(path)
}

// NewCatalogRef wraps a catalog in an observed reference the builder watches
// for reloads.
func NewCatalogRef(c catalog.Catalog) *catalog.Ref {
	return catalog.NewRef(c)
}

// WithValidator injects a custom schema validator.
func WithValidator(v form.Validator) Option {
	return builder.WithValidator(v)
}

// WithLogger sets the logger used for non-fatal noise such as preview-query
// failures.
func WithLogger(logger *slog.Logger) Option {
	return builder.WithLogger(logger)
}
