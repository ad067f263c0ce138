// Package testsupport holds fixtures shared by the package tests: a
// canonical catalog and scriptable stand-ins for the two external services.
package testsupport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-datasetform/pkg/catalog"
	"github.com/goliatone/go-datasetform/pkg/preview"
	"github.com/goliatone/go-datasetform/pkg/submission"
)

// Context returns the context used across contract tests.
func Context() context.Context {
	return context.Background()
}

// Catalog returns the canonical test catalog used across packages.
func Catalog() catalog.Catalog {
	return catalog.Catalog{
		Functions: map[string]catalog.Function{
			"extract_entities": {
				Type:        catalog.FunctionTypeJSON,
				Description: "Extract named entities from a document.",
				Variants: map[string]catalog.Variant{
					"baseline": {Model: "gpt-4o-mini", Weight: 1},
					"turbo":    {Model: "llama-3.1-8b", Weight: 0},
				},
			},
			"summarize": {
				Type:        catalog.FunctionTypeChat,
				Description: "Summarize a conversation.",
			},
		},
		Metrics: map[string]catalog.MetricConfig{
			"exact_match": {
				Type:     catalog.MetricTypeFloat,
				Optimize: "max",
				Level:    "inference",
			},
			"thumbs_up": {
				Type:     catalog.MetricTypeBoolean,
				Optimize: "max",
				Level:    "episode",
			},
		},
	}
}

// StaticCounts returns a count service that always replies with the given
// result.
func StaticCounts(result preview.Result) preview.CountService {
	return preview.CountServiceFunc(func(context.Context, preview.Params) (preview.Result, error) {
		return result, nil
	})
}

// FailingCounts returns a count service that always fails.
func FailingCounts(message string) preview.CountService {
	err := errors.New(message)
	return preview.CountServiceFunc(func(context.Context, preview.Params) (preview.Result, error) {
		return preview.Result{}, err
	})
}

// StaticSubmit returns a submission service that always replies with the
// given outcome and records how many times it was called.
func StaticSubmit(outcome submission.Outcome) *RecordingSubmit {
	return &RecordingSubmit{outcome: outcome}
}

// RecordingSubmit counts submission attempts and keeps the last payload.
type RecordingSubmit struct {
	mu      sync.Mutex
	outcome submission.Outcome
	err     error
	calls   int
	last    []byte
}

// FailSubmit returns a submission service whose transport always errors.
func FailSubmit(message string) *RecordingSubmit {
	return &RecordingSubmit{err: errors.New(message)}
}

// Submit implements submission.Service.
func (s *RecordingSubmit) Submit(_ context.Context, payload []byte) (submission.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = append([]byte(nil), payload...)
	if s.err != nil {
		return submission.Outcome{}, s.err
	}
	return s.outcome, nil
}

// Calls reports how many submission attempts were made.
func (s *RecordingSubmit) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastPayload returns the payload of the most recent attempt.
func (s *RecordingSubmit) LastPayload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}

// Diff fails the test when want and got differ, printing a cmp diff.
func Diff(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
