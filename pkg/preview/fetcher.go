package preview

import (
	"context"
	"log/slog"
	"sync"
)

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used when a count query fails. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.log = logger
		}
	}
}

// WithOnUpdate registers a callback invoked after a fresh result is applied
// or the counts reset. The callback runs outside the fetcher lock.
func WithOnUpdate(fn func(Result)) Option {
	return func(f *Fetcher) {
		f.onUpdate = fn
	}
}

// Fetcher issues count-preview queries for the watched selection and applies
// last-request-wins semantics: every Refresh bumps a generation counter, and
// a completing query only lands when its generation is still the latest.
// Supersession is decided by issuance sequence, not completion order, so a
// stale query that resolves late is discarded even if the newer one is still
// in flight. Superseded queries are additionally cancelled through their
// context to bound resource use.
type Fetcher struct {
	mu       sync.Mutex
	svc      CountService
	log      *slog.Logger
	onUpdate func(Result)

	gen    uint64
	cancel context.CancelFunc
	result Result
}

// NewFetcher constructs a fetcher around a count service.
func NewFetcher(svc CountService, options ...Option) *Fetcher {
	f := &Fetcher{
		svc: svc,
		log: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Refresh supersedes any in-flight query and, when a function is selected,
// issues a new one for the supplied selection. With no function selected the
// counts reset to unresolved and no query is issued.
func (f *Fetcher) Refresh(ctx context.Context, params Params) {
	f.mu.Lock()
	f.gen++
	seq := f.gen
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}

	if params.Function == "" {
		f.result = Result{}
		notify := f.onUpdate
		f.mu.Unlock()
		if notify != nil {
			notify(Result{})
		}
		return
	}

	queryCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	svc := f.svc
	f.mu.Unlock()

	go func() {
		result, err := svc.Query(queryCtx, params)
		cancel()

		f.mu.Lock()
		if seq != f.gen {
			f.mu.Unlock()
			return
		}
		if err != nil {
			// Preview only: keep whatever counts we had.
			log := f.log
			f.mu.Unlock()
			log.Debug("count preview query failed",
				"function", params.Function,
				"metric", params.Metric,
				"error", err,
			)
			return
		}
		f.result = result.clone()
		notify := f.onUpdate
		snapshot := f.result.clone()
		f.mu.Unlock()

		if notify != nil {
			notify(snapshot)
		}
	}()
}

// Result returns the most recently applied counts.
func (f *Fetcher) Result() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result.clone()
}

// Close cancels any in-flight query and invalidates its result.
func (f *Fetcher) Close() {
	f.mu.Lock()
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.mu.Unlock()
}
