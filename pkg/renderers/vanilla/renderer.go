// Package vanilla renders a read-only HTML view of a dataset-builder
// snapshot. It is presentation glue for hosts that want to embed the current
// form state in a page; the interactive surface stays outside this module.
package vanilla

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-datasetform/pkg/builder"
	"github.com/goliatone/go-datasetform/pkg/render"
)

const snapshotTemplate = "templates/snapshot.html.tmpl"

// Option configures the renderer before construction.
type Option func(*config)

type config struct {
	templateFS fs.FS
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must contain templates/snapshot.html.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// Renderer renders builder snapshots to HTML using a pongo2 template set.
type Renderer struct {
	templateSet *pongo2.TemplateSet
	printer     *message.Printer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	return &Renderer{
		templateSet: pongo2.NewSet("datasetform", pongo2.NewFSLoader(cfg.templateFS)),
		printer:     message.NewPrinter(language.English),
	}, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "vanilla"
}

// ContentType reports the output MIME type.
func (r *Renderer) ContentType() string {
	return "text/html"
}

// Render produces the HTML snapshot.
func (r *Renderer) Render(ctx context.Context, snap builder.Snapshot, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("vanilla: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpl, err := r.templateSet.FromCache(snapshotTemplate)
	if err != nil {
		return nil, fmt.Errorf("vanilla: load template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(r.buildContext(snap, options), &buf); err != nil {
		return nil, fmt.Errorf("vanilla: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) buildContext(snap builder.Snapshot, options render.RenderOptions) pongo2.Context {
	values := snap.Values

	function := map[string]any{"id": values.Function, "type": string(values.Type), "description": ""}
	if fn, ok := options.Catalog.Function(values.Function); ok {
		function["description"] = sanitizeText(fn.Description)
	}

	metric := map[string]any{"id": values.MetricName, "hasThreshold": false}
	if values.MetricConfig.HasThreshold() {
		metric["hasThreshold"] = true
	}

	return pongo2.Context{
		"values": map[string]any{
			"dataset":            values.Dataset,
			"variant":            values.Variant,
			"threshold":          values.Threshold,
			"joinDemonstrations": values.JoinDemonstrations,
		},
		"function":  function,
		"metric":    metric,
		"errors":    flattenErrors(snap.FieldErrors),
		"rootError": snap.RootError,
		"counts": map[string]any{
			"inference": r.formatCount(snap.Counts.InferenceCount),
			"feedback":  r.formatCount(snap.Counts.FeedbackCount),
			"curated":   r.formatCount(snap.Counts.CuratedInferenceCount),
		},
		"submit": map[string]any{
			"label":   snap.SubmitLabel,
			"enabled": snap.SubmitEnabled,
			"phase":   string(snap.Submission.Phase),
		},
		"theme": themeContext(options.Theme),
	}
}

func (r *Renderer) formatCount(count *int64) string {
	if count == nil {
		return ""
	}
	return r.printer.Sprintf("%d", *count)
}

func flattenErrors(fieldErrors map[string][]string) map[string]string {
	if len(fieldErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(fieldErrors))
	for field, msgs := range fieldErrors {
		out[field] = strings.Join(msgs, ", ")
	}
	return out
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	out := map[string]any{"rootClass": "", "cssVarsStyle": ""}
	if cfg == nil {
		return out
	}
	out["name"] = cfg.Theme
	out["variant"] = cfg.Variant
	if root, ok := cfg.Tokens["root"]; ok {
		out["rootClass"] = root
	}
	out["cssVarsStyle"] = cssVarsStyle(cfg.CSSVars)
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(vars[key])
		sb.WriteString("; ")
	}
	return strings.TrimSpace(sb.String())
}
