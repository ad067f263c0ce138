// Package submission governs the dataset-builder submit lifecycle as a small
// finite state machine: idle → submitting → complete, with failure returning
// to idle. Modelling completion as its own state (rather than a boolean
// in-flight flag) gives the submit control distinct re-arm behaviour after a
// successful run.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Phase is the submission lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseComplete   Phase = "complete"
)

// ErrNotIdle is returned when Submit is attempted while a submission is in
// flight or the machine sits in complete awaiting re-arm.
var ErrNotIdle = errors.New("submission: controller is not idle")

// ErrNotComplete is returned when ReArm is attempted outside the complete
// state.
var ErrNotComplete = errors.New("submission: controller is not complete")

// Outcome is the service's verdict on one submission attempt.
type Outcome struct {
	Success bool
	Count   *int64
	Message string
}

// Service persists a serialized dataset selection. Exactly one call is made
// per submission attempt; the controller never retries.
type Service interface {
	Submit(ctx context.Context, payload []byte) (Outcome, error)
}

// ServiceFunc adapts a function into a Service.
type ServiceFunc func(ctx context.Context, payload []byte) (Outcome, error)

// Submit delegates to the underlying function.
func (fn ServiceFunc) Submit(ctx context.Context, payload []byte) (Outcome, error) {
	return fn(ctx, payload)
}

// PayloadFunc builds the outbound payload at dispatch time, serializing the
// entire current value set as one opaque body.
type PayloadFunc func() ([]byte, error)

// Snapshot is the externally visible submission state.
type Snapshot struct {
	Phase         Phase
	RootError     string
	InsertedCount *int64
}

// Option customises a Controller.
type Option func(*Controller)

// WithOnChange registers a callback invoked after every state transition,
// outside the controller lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// Controller is the submission state machine. It is the sole writer of the
// root error and inserted count, and it guarantees at most one submission in
// flight: re-entry is rejected until the current attempt settles.
type Controller struct {
	mu       sync.Mutex
	svc      Service
	onChange func(Snapshot)

	phase    Phase
	rootErr  string
	inserted *int64
}

// NewController constructs a controller in the idle phase.
func NewController(svc Service, options ...Option) *Controller {
	c := &Controller{
		svc:   svc,
		phase: PhaseIdle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Submit runs one attempt end to end: transition to submitting, build the
// payload, call the service once, and settle into complete or back to idle.
// The call blocks until the attempt settles; run it on its own goroutine when
// driving a UI. Validation is the caller's gate; the controller assumes the
// values already passed.
//
// Payload construction failures, including panics, are treated as submission
// failures so the machine never sticks in submitting.
func (c *Controller) Submit(ctx context.Context, build PayloadFunc) error {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	c.phase = PhaseSubmitting
	c.rootErr = ""
	c.notifyLocked()

	payload, err := buildPayload(build)
	if err != nil {
		c.failLocked(err.Error())
		return nil
	}

	svc := c.svc
	c.mu.Unlock()

	outcome, err := svc.Submit(ctx, payload)

	c.mu.Lock()
	switch {
	case err != nil:
		c.failLocked(err.Error())
	case !outcome.Success:
		c.failLocked(outcome.Message)
	default:
		c.phase = PhaseComplete
		c.rootErr = ""
		c.inserted = outcome.Count
		c.notifyLocked()
		c.mu.Unlock()
	}
	return nil
}

// ReArm exits the complete state, clearing the inserted count and root error
// so the form can submit again. It is the only exit from complete and is
// user-initiated.
func (c *Controller) ReArm() error {
	c.mu.Lock()
	if c.phase != PhaseComplete {
		c.mu.Unlock()
		return ErrNotComplete
	}
	c.phase = PhaseIdle
	c.rootErr = ""
	c.inserted = nil
	c.notifyLocked()
	c.mu.Unlock()
	return nil
}

// State returns the current snapshot.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// failLocked records a failure and returns the machine to idle, leaving field
// values untouched for a retry. Releases the lock.
func (c *Controller) failLocked(message string) {
	c.phase = PhaseIdle
	c.rootErr = message
	c.notifyLocked()
	c.mu.Unlock()
}

// notifyLocked invokes the change callback with a snapshot. The lock is
// released for the duration of the callback and re-acquired before returning.
func (c *Controller) notifyLocked() {
	if c.onChange == nil {
		return
	}
	snapshot := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()
	fn(snapshot)
	c.mu.Lock()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:     c.phase,
		RootError: c.rootErr,
	}
	if c.inserted != nil {
		n := *c.inserted
		snap.InsertedCount = &n
	}
	return snap
}

func buildPayload(build PayloadFunc) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submission: build payload: %v", r)
		}
	}()
	if build == nil {
		return nil, errors.New("submission: payload builder is required")
	}
	payload, err = build()
	if err != nil {
		return nil, fmt.Errorf("submission: build payload: %w", err)
	}
	return payload, nil
}
