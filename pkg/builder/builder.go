// Package builder wires the dataset-form pieces together: the value store,
// the derived-field resolver, the count-preview fetcher, and the submission
// controller. A host presentation layer drives it through SetField/Submit and
// reads back Snapshot.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-datasetform/pkg/catalog"
	"github.com/goliatone/go-datasetform/pkg/derive"
	"github.com/goliatone/go-datasetform/pkg/form"
	"github.com/goliatone/go-datasetform/pkg/preview"
	"github.com/goliatone/go-datasetform/pkg/submission"
	"github.com/goliatone/go-datasetform/pkg/validation"
)

// ErrDerivedField is returned when a caller writes a field owned by the
// derivation pass (`type`, `metric_config`).
var ErrDerivedField = errors.New("builder: field is derived and not settable")

// ErrValidation is returned when Submit is attempted while validation fails.
// No service call is made; field errors remain surfaced by the store.
var ErrValidation = errors.New("builder: form values failed validation")

// Option customises the builder configuration.
type Option func(*config)

type config struct {
	validator form.Validator
	logger    *slog.Logger
}

// WithValidator injects a custom schema validator. Defaults to the built-in
// OpenAPI-schema validator.
func WithValidator(v form.Validator) Option {
	return func(cfg *config) {
		if v != nil {
			cfg.validator = v
		}
	}
}

// WithLogger sets the logger used for non-fatal noise such as preview-query
// failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Snapshot is the full externally visible state of the builder, enough for a
// presentation layer to render the form without reaching into components.
type Snapshot struct {
	Values        form.Values
	FieldErrors   map[string][]string
	RootError     string
	Counts        preview.Result
	Submission    submission.Snapshot
	SubmitLabel   string
	SubmitEnabled bool
}

// Builder orchestrates one dataset-builder form instance. All state mutation
// funnels through the contained components, each of which serializes its own
// writes, standing in for the single-threaded event loop of a UI host.
type Builder struct {
	store      *form.Store
	resolver   *derive.Resolver
	fetcher    *preview.Fetcher
	controller *submission.Controller
	ref        *catalog.Ref
}

// New constructs a builder over a catalog reference and the two external
// services. The form starts idle with default values (threshold 0.5) and the
// derived fields already consistent with the catalog.
func New(ref *catalog.Ref, counts preview.CountService, submitter submission.Service, options ...Option) (*Builder, error) {
	if ref == nil {
		return nil, errors.New("builder: catalog ref is required")
	}
	if counts == nil {
		return nil, errors.New("builder: count service is required")
	}
	if submitter == nil {
		return nil, errors.New("builder: submission service is required")
	}

	cfg := &config{
		validator: validation.New(),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	store := form.NewStore(cfg.validator)
	b := &Builder{
		store: store,
		ref:   ref,
	}
	b.resolver = derive.Attach(store, ref)
	b.fetcher = preview.NewFetcher(counts, preview.WithLogger(cfg.logger))
	b.controller = submission.NewController(submitter,
		submission.WithOnChange(func(snap submission.Snapshot) {
			store.SetRootError(snap.RootError)
		}),
	)
	return b, nil
}

// SetField writes one user-editable field. Derived fields are rejected. After
// the change (and its derivation pass) settles, a change to the watched
// (function, metric, threshold) triple supersedes the in-flight count preview
// and issues a fresh query.
func (b *Builder) SetField(ctx context.Context, field string, value any) error {
	if form.IsDerived(field) {
		return fmt.Errorf("%w: %q", ErrDerivedField, field)
	}

	before := b.previewParams()
	if err := b.store.Set(field, value); err != nil {
		return err
	}
	after := b.previewParams()
	if before != after {
		b.fetcher.Refresh(ctx, after)
	}
	return nil
}

// Values returns a copy of the current form values.
func (b *Builder) Values() form.Values {
	return b.store.Values()
}

// Submit validates and, when the values pass, runs one submission attempt to
// completion. It blocks until the attempt settles; UI hosts run it on its own
// goroutine and re-render from Snapshot. With failing validation it returns
// ErrValidation without touching the service.
func (b *Builder) Submit(ctx context.Context) error {
	if result := b.store.Validate(); !result.Valid {
		return ErrValidation
	}
	return b.controller.Submit(ctx, func() ([]byte, error) {
		return json.Marshal(b.store.Values())
	})
}

// ReArm exits the complete state so the form can submit again.
func (b *Builder) ReArm() error {
	return b.controller.ReArm()
}

// Snapshot assembles the current externally visible state.
func (b *Builder) Snapshot() Snapshot {
	subState := b.controller.State()
	return Snapshot{
		Values:        b.store.Values(),
		FieldErrors:   b.store.Errors(),
		RootError:     b.store.RootError(),
		Counts:        b.fetcher.Result(),
		Submission:    subState,
		SubmitLabel:   submission.Label(subState),
		SubmitEnabled: submission.SubmitEnabled(subState),
	}
}

// Catalog returns the catalog the builder currently observes.
func (b *Builder) Catalog() catalog.Catalog {
	return b.ref.Current()
}

// Close detaches the builder from its catalog reference and cancels any
// in-flight preview query.
func (b *Builder) Close() {
	b.resolver.Close()
	b.fetcher.Close()
}

func (b *Builder) previewParams() preview.Params {
	values := b.store.Values()
	return preview.Params{
		Function:  values.Function,
		Metric:    values.MetricName,
		Threshold: values.Threshold,
	}
}
