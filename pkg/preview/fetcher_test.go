package preview_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-datasetform/pkg/preview"
)

// blockingService parks every query until the test releases it, recording
// calls in issuance order.
type blockingService struct {
	calls chan *blockedCall
}

type blockedCall struct {
	params preview.Params
	reply  chan preview.Result
	fail   chan error
}

func newBlockingService() *blockingService {
	return &blockingService{calls: make(chan *blockedCall, 8)}
}

func (s *blockingService) Query(ctx context.Context, params preview.Params) (preview.Result, error) {
	call := &blockedCall{
		params: params,
		reply:  make(chan preview.Result, 1),
		fail:   make(chan error, 1),
	}
	s.calls <- call
	select {
	case result := <-call.reply:
		return result, nil
	case err := <-call.fail:
		return preview.Result{}, err
	case <-ctx.Done():
		return preview.Result{}, ctx.Err()
	}
}

func (s *blockingService) next(t *testing.T) *blockedCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a count query")
		return nil
	}
}

func awaitUpdate(t *testing.T, updates chan preview.Result) preview.Result {
	t.Helper()
	select {
	case result := <-updates:
		return result
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a count update")
		return preview.Result{}
	}
}

func TestFetcher_LastRequestWins(t *testing.T) {
	svc := newBlockingService()
	updates := make(chan preview.Result, 8)
	fetcher := preview.NewFetcher(svc, preview.WithOnUpdate(func(r preview.Result) {
		updates <- r
	}))
	defer fetcher.Close()

	ctx := context.Background()
	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities"})
	first := svc.next(t)

	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities", Metric: "exact_match", Threshold: 0.5})
	second := svc.next(t)

	// The newer request resolves first, then the superseded one completes.
	// Supersession goes by issuance sequence, so only the newer result lands.
	second.reply <- preview.Result{InferenceCount: preview.Count(1532)}
	applied := awaitUpdate(t, updates)
	if applied.InferenceCount == nil || *applied.InferenceCount != 1532 {
		t.Fatalf("applied = %+v, want the newer request's counts", applied)
	}

	first.reply <- preview.Result{InferenceCount: preview.Count(9)}
	// The stale result must be discarded: state still shows the newer counts.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if got := fetcher.Result(); got.InferenceCount == nil || *got.InferenceCount != 1532 {
			t.Fatalf("stale result was applied: %+v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFetcher_NoFunctionNoQuery(t *testing.T) {
	svc := newBlockingService()
	updates := make(chan preview.Result, 1)
	fetcher := preview.NewFetcher(svc, preview.WithOnUpdate(func(r preview.Result) {
		updates <- r
	}))
	defer fetcher.Close()

	fetcher.Refresh(context.Background(), preview.Params{})

	reset := awaitUpdate(t, updates)
	if diff := cmp.Diff(preview.Result{}, reset); diff != "" {
		t.Fatalf("counts should reset (-want +got):\n%s", diff)
	}
	select {
	case call := <-svc.calls:
		t.Fatalf("query issued with no function selected: %+v", call.params)
	default:
	}
}

func TestFetcher_ClearingFunctionResetsCounts(t *testing.T) {
	svc := newBlockingService()
	updates := make(chan preview.Result, 8)
	fetcher := preview.NewFetcher(svc, preview.WithOnUpdate(func(r preview.Result) {
		updates <- r
	}))
	defer fetcher.Close()

	ctx := context.Background()
	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities"})
	call := svc.next(t)
	call.reply <- preview.Result{InferenceCount: preview.Count(10)}
	awaitUpdate(t, updates)

	fetcher.Refresh(ctx, preview.Params{})
	reset := awaitUpdate(t, updates)
	if reset.InferenceCount != nil {
		t.Fatalf("counts = %+v, want reset after clearing function", reset)
	}
}

func TestFetcher_FailureKeepsPreviousCounts(t *testing.T) {
	svc := newBlockingService()
	updates := make(chan preview.Result, 8)
	fetcher := preview.NewFetcher(svc, preview.WithOnUpdate(func(r preview.Result) {
		updates <- r
	}))
	defer fetcher.Close()

	ctx := context.Background()
	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities"})
	call := svc.next(t)
	call.reply <- preview.Result{InferenceCount: preview.Count(42)}
	awaitUpdate(t, updates)

	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities", Metric: "exact_match"})
	failing := svc.next(t)
	failing.fail <- context.DeadlineExceeded

	// The failure is swallowed; previous counts stay visible.
	time.Sleep(50 * time.Millisecond)
	got := fetcher.Result()
	if got.InferenceCount == nil || *got.InferenceCount != 42 {
		t.Fatalf("counts = %+v, want previous counts preserved", got)
	}
	select {
	case r := <-updates:
		t.Fatalf("failure produced an update: %+v", r)
	default:
	}
}

func TestFetcher_SupersededRequestIsCancelled(t *testing.T) {
	svc := newBlockingService()
	fetcher := preview.NewFetcher(svc)
	defer fetcher.Close()

	ctx := context.Background()
	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities", Threshold: 0.4})
	first := svc.next(t)
	fetcher.Refresh(ctx, preview.Params{Function: "extract_entities", Threshold: 0.6})
	second := svc.next(t)

	// The first query's context is cancelled by the second Refresh; a
	// transport that honours cancellation unblocks without a reply.
	if first.params.Threshold != 0.4 || second.params.Threshold != 0.6 {
		t.Fatalf("calls out of order: %+v, %+v", first.params, second.params)
	}
	second.reply <- preview.Result{InferenceCount: preview.Count(7)}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := fetcher.Result()
		if got.InferenceCount != nil && *got.InferenceCount == 7 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("newer result never applied: %+v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
