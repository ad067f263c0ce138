// Package tui drives a dataset-builder instance from a terminal: prompt for
// each field, show the row-count preview, confirm, submit, and report the
// outcome. It is boundary glue around pkg/builder; all form semantics live
// there.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-datasetform/pkg/builder"
	"github.com/goliatone/go-datasetform/pkg/form"
)

const (
	noneOption        = "(none)"
	anyVariantOption  = "(any)"
	countsWaitTimeout = 3 * time.Second
	countsPollStep    = 100 * time.Millisecond
)

// FlowOption customises a Flow.
type FlowOption func(*Flow)

// WithDriver replaces the default survey-backed prompt driver.
func WithDriver(driver PromptDriver) FlowOption {
	return func(f *Flow) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// Flow walks a user through one build-preview-submit round trip.
type Flow struct {
	builder *builder.Builder
	driver  PromptDriver
	printer *message.Printer
}

// NewFlow constructs a flow over a builder.
func NewFlow(b *builder.Builder, options ...FlowOption) (*Flow, error) {
	if b == nil {
		return nil, errors.New("tui: builder is required")
	}
	f := &Flow{
		builder: b,
		driver:  NewSurveyDriver(),
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f, nil
}

// Run executes the interactive flow. It returns ErrAborted when the user
// interrupts, and nil after a completed round trip. A failed submission is
// reported to the user rather than escalated.
func (f *Flow) Run(ctx context.Context) error {
	if err := f.promptDataset(ctx); err != nil {
		return err
	}
	if err := f.promptFunction(ctx); err != nil {
		return err
	}
	if err := f.promptMetric(ctx); err != nil {
		return err
	}
	if err := f.promptJoinDemonstrations(ctx); err != nil {
		return err
	}

	f.reportCounts(ctx)

	confirmed, err := f.driver.Confirm(ctx, ConfirmConfig{
		Message: "Create dataset?",
		Default: true,
	})
	if err != nil {
		return err
	}
	if !confirmed {
		return f.driver.Info(ctx, "Aborted; nothing was created.")
	}

	if err := f.builder.Submit(ctx); err != nil {
		if errors.Is(err, builder.ErrValidation) {
			return f.reportValidationErrors(ctx)
		}
		return err
	}

	snap := f.builder.Snapshot()
	if snap.RootError != "" {
		return f.driver.Info(ctx, "Submission failed: "+snap.RootError)
	}
	return f.driver.Info(ctx, snap.SubmitLabel)
}

func (f *Flow) promptDataset(ctx context.Context) error {
	name, err := f.driver.Input(ctx, InputConfig{
		Message: "Dataset name",
		Help:    "Name of the dataset to create or append to.",
		Validator: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("dataset name is required")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	return f.builder.SetField(ctx, form.FieldDataset, strings.TrimSpace(name))
}

func (f *Flow) promptFunction(ctx context.Context) error {
	cat := f.builder.Catalog()
	ids := cat.FunctionIDs()
	if len(ids) == 0 {
		return f.driver.Info(ctx, "Catalog has no functions; rows cannot be previewed.")
	}

	idx, err := f.driver.Select(ctx, SelectConfig{
		Message: "Function",
		Options: append([]string{noneOption}, ids...),
	})
	if err != nil {
		return err
	}
	if idx <= 0 {
		return nil
	}
	functionID := ids[idx-1]
	if err := f.builder.SetField(ctx, form.FieldFunction, functionID); err != nil {
		return err
	}

	variants := cat.VariantNames(functionID)
	if len(variants) == 0 {
		return nil
	}
	vidx, err := f.driver.Select(ctx, SelectConfig{
		Message: "Variant",
		Options: append([]string{anyVariantOption}, variants...),
	})
	if err != nil {
		return err
	}
	if vidx <= 0 {
		return nil
	}
	return f.builder.SetField(ctx, form.FieldVariant, variants[vidx-1])
}

func (f *Flow) promptMetric(ctx context.Context) error {
	cat := f.builder.Catalog()
	ids := cat.MetricIDs()
	if len(ids) == 0 {
		return nil
	}

	idx, err := f.driver.Select(ctx, SelectConfig{
		Message: "Metric",
		Options: append([]string{noneOption}, ids...),
	})
	if err != nil {
		return err
	}
	if idx <= 0 {
		return nil
	}
	if err := f.builder.SetField(ctx, form.FieldMetricName, ids[idx-1]); err != nil {
		return err
	}

	// The threshold only matters for metrics with threshold semantics; the
	// derivation pass has already mirrored the metric config by now.
	if !f.builder.Values().MetricConfig.HasThreshold() {
		return nil
	}
	raw, err := f.driver.Input(ctx, InputConfig{
		Message: "Threshold",
		Default: strconv.FormatFloat(form.DefaultThreshold, 'f', -1, 64),
		Validator: func(value string) error {
			_, perr := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if perr != nil {
				return errors.New("threshold must be a number")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	threshold, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("tui: parse threshold: %w", err)
	}
	return f.builder.SetField(ctx, form.FieldThreshold, threshold)
}

func (f *Flow) promptJoinDemonstrations(ctx context.Context) error {
	join, err := f.driver.Confirm(ctx, ConfirmConfig{
		Message: "Join demonstration data into the output rows?",
	})
	if err != nil {
		return err
	}
	return f.builder.SetField(ctx, form.FieldJoinDemonstrations, join)
}

// reportCounts waits briefly for the preview query to land, then prints
// whatever counts are available. Counts are an affordance; missing ones are
// shown as dashes rather than treated as errors.
func (f *Flow) reportCounts(ctx context.Context) {
	if f.builder.Values().Function == "" {
		return
	}

	deadline := time.Now().Add(countsWaitTimeout)
	counts := f.builder.Snapshot().Counts
	for counts.InferenceCount == nil && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(countsPollStep):
		}
		counts = f.builder.Snapshot().Counts
	}

	_ = f.driver.Info(ctx, fmt.Sprintf(
		"Rows matching the selection: inferences %s, feedback %s, curated %s",
		f.formatCount(counts.InferenceCount),
		f.formatCount(counts.FeedbackCount),
		f.formatCount(counts.CuratedInferenceCount),
	))
}

func (f *Flow) reportValidationErrors(ctx context.Context) error {
	snap := f.builder.Snapshot()
	lines := []string{"The selection is not valid:"}
	for field, msgs := range snap.FieldErrors {
		label := field
		if label == "" {
			label = "form"
		}
		lines = append(lines, "  "+label+": "+strings.Join(msgs, ", "))
	}
	return f.driver.Info(ctx, strings.Join(lines, "\n"))
}

func (f *Flow) formatCount(count *int64) string {
	if count == nil {
		return "—"
	}
	return f.printer.Sprintf("%d", *count)
}
