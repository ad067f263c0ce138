// Package render defines the contract for presentation snapshots of a
// dataset-builder instance. Renderers are read-only: they consume a builder
// snapshot and produce bytes, never driving the form themselves.
package render

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-datasetform/pkg/builder"
	"github.com/goliatone/go-datasetform/pkg/catalog"
)

// RenderOptions carries per-request data renderers can use without reaching
// into the builder.
type RenderOptions struct {
	// Catalog supplies labels and descriptions for the selected function and
	// metric. Optional; renderers fall back to bare identifiers.
	Catalog catalog.Catalog

	// Theme carries resolved theme tokens and CSS variables. Optional.
	Theme *theme.RendererConfig
}

// Renderer converts a builder snapshot into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snap builder.Snapshot, options RenderOptions) ([]byte, error)
}
