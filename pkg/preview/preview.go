// Package preview resolves row-count previews for the current builder
// selection. Counts are an affordance, not a correctness-critical path:
// query failures never surface to the form and a superseded result is never
// applied.
package preview

import "context"

// Params identifies the selection a count preview is computed for.
type Params struct {
	Function  string
	Metric    string
	Threshold float64
}

// Result holds the preview counts for a selection. A nil count is unresolved
// or not applicable to the current selection.
type Result struct {
	InferenceCount        *int64
	FeedbackCount         *int64
	CuratedInferenceCount *int64
}

// CountService resolves preview counts for a selection. Implementations may
// fail; failures are non-fatal to the builder.
type CountService interface {
	Query(ctx context.Context, params Params) (Result, error)
}

// CountServiceFunc adapts a function into a CountService.
type CountServiceFunc func(ctx context.Context, params Params) (Result, error)

// Query delegates to the underlying function.
func (fn CountServiceFunc) Query(ctx context.Context, params Params) (Result, error) {
	return fn(ctx, params)
}

// Count wraps an integer count for use in Result literals.
func Count(n int64) *int64 {
	return &n
}

func (r Result) clone() Result {
	out := Result{}
	if r.InferenceCount != nil {
		out.InferenceCount = Count(*r.InferenceCount)
	}
	if r.FeedbackCount != nil {
		out.FeedbackCount = Count(*r.FeedbackCount)
	}
	if r.CuratedInferenceCount != nil {
		out.CuratedInferenceCount = Count(*r.CuratedInferenceCount)
	}
	return out
}
