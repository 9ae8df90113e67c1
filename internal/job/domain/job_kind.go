package domain

import (
	"context"
	"encoding/json"
)

// JobSignal is the tagged-sum control channel a JobKind's operations
// return alongside (or instead of) an error. Modeling pause/early-finish
// as explicit return values, rather than overloading the error channel,
// keeps "the job asked to stop" distinct from "the job failed" at every
// call site.
type JobSignal struct {
	kind   jobSignalKind
	reason string
}

type jobSignalKind int

const (
	jobSignalNone jobSignalKind = iota
	jobSignalEarlyFinish
	jobSignalPaused
)

// SignalNone is the ordinary "keep going" signal.
var SignalNone = JobSignal{kind: jobSignalNone}

// SignalEarlyFinish asks the worker to stop the step loop and proceed to
// Finalize early, recording reason in the eventual JobReport metadata.
func SignalEarlyFinish(reason string) JobSignal {
	return JobSignal{kind: jobSignalEarlyFinish, reason: reason}
}

// SignalPaused asks the worker to persist the current JobState and stop
// without calling Finalize. The job kind only signals intent; the worker
// owns serializing JobState to bytes.
var SignalPaused = JobSignal{kind: jobSignalPaused}

// IsNone reports whether this is the ordinary "keep going" signal.
func (s JobSignal) IsNone() bool { return s.kind == jobSignalNone }

// IsEarlyFinish reports whether the job kind asked to finish early, and its reason.
func (s JobSignal) IsEarlyFinish() (string, bool) {
	return s.reason, s.kind == jobSignalEarlyFinish
}

// IsPaused reports whether the job kind asked to pause at this boundary.
func (s JobSignal) IsPaused() bool { return s.kind == jobSignalPaused }

// WorkerContext is handed to every JobKind operation. It carries the job's
// identity and a channel of cancel/pause commands is NOT here — the worker
// itself polls that between steps; a JobKind only ever gets to observe the
// context cancellation, not the raw command channel, to keep the contract
// between worker and job kind one-directional.
type WorkerContext struct {
	JobID string
}

// JobKind is the uniform, dynamically-dispatched contract a runnable job
// type implements. It replaces the generic StatefulJob<Init,Data,Step>
// trait shape with a single interface keyed by name in a Registry, since
// Go has no associated types: per-kind payload shapes live inside each
// kind's own Init/ExecuteStep/Finalize bodies as json.RawMessage.
type JobKind interface {
	// Name is the job kind's unique, stable identifier, stored on every JobReport it produces.
	Name() string

	// Init populates state.Data and seeds state.Steps from state.Init.
	// Called exactly once per run, before any step executes. Retriable
	// from scratch after a crash, since state.Data is nil until Init
	// succeeds.
	Init(ctx context.Context, wctx *WorkerContext, state *JobState) (JobSignal, error)

	// ExecuteStep processes state.Steps[0] without removing it; the worker
	// pops the step and increments StepNumber itself after every nil-error
	// return, whether or not the step also signals a pause, so a paused
	// run's StepNumber always reflects the step that just ran. A kind that
	// needs to carry work across steps (accumulated output, discovered
	// sub-work) must do so through state.Data/state.PushStep, never
	// through its own struct fields: the Registry hands out a fresh
	// instance per run, so struct fields don't survive a pause/resume or a
	// restart.
	ExecuteStep(ctx context.Context, wctx *WorkerContext, state *JobState) (JobSignal, error)

	// Finalize runs once after Steps is empty (or after SignalEarlyFinish)
	// and returns the JobReport metadata to persist.
	Finalize(ctx context.Context, wctx *WorkerContext, state *JobState) (json.RawMessage, JobSignal, error)

	// Fingerprint returns a kind-specific identifier for a raw Init payload;
	// a kind is free to normalize init first (e.g. canonicalize a path).
	// JobManager does not call it: dispatch dedup uses JobState.Fingerprint,
	// the kind name plus a SHA-256 of the exact Init bytes, so two different
	// byte encodings of the same Init count as separate dispatches.
	Fingerprint(init json.RawMessage) string
}
