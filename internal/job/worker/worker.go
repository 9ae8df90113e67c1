// Package worker drives a single job through its init -> step* -> finalize
// lifecycle, honoring cooperative pause/cancel commands and emitting
// progress events for its JobManager to relay to subscribers.
package worker

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

// CommandKind is the set of cooperative controls a manager may send a
// running worker. Delivery is via a buffered channel the worker polls
// only at step boundaries, never mid-step.
type CommandKind int

const (
	// CommandPause asks the worker to persist state and stop without finalizing.
	CommandPause CommandKind = iota
	// CommandCancel asks the worker to stop without finalizing and report Canceled.
	CommandCancel
)

// Command is one cooperative control message.
type Command struct {
	Kind CommandKind
}

// EventKind distinguishes what a JobEvent is reporting.
type EventKind int

const (
	// EventProgress reports a step transition; Completed/Total/Phase are meaningful.
	EventProgress EventKind = iota
	// EventPaused reports the job stopped at a step boundary; Seed holds its serialized state.
	EventPaused
	// EventCompleted reports a successful finalize; Metadata holds its output.
	EventCompleted
	// EventFailed reports a terminal failure; Err holds the cause.
	EventFailed
	// EventCanceled reports a cooperative cancel took effect.
	EventCanceled
)

// String renders the event kind for logging and the HTTP API.
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventPaused:
		return "paused"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// JobEvent is what a Worker emits on its progress channel. A JobManager
// relays it to persistence and to any external subscribers.
type JobEvent struct {
	JobID     uuid.UUID
	Kind      EventKind
	Completed int
	Total     int
	Phase     string
	Seed      []byte
	Metadata  []byte
	Err       error
}

// Worker drives exactly one job run for its lifetime. A JobManager
// constructs a fresh Worker per dispatch (or per restore) and discards it
// once the run reaches a terminal state or pauses.
type Worker struct {
	jobID    uuid.UUID
	kindName string
	kind     jobDomain.JobKind
	commands chan Command
	events   chan<- JobEvent
	logger   *slog.Logger
}

// New constructs a Worker for one run of kind, reporting events on events.
// The caller owns the lifetime of the events channel; Worker only sends.
func New(jobID uuid.UUID, kind jobDomain.JobKind, events chan<- JobEvent, logger *slog.Logger) *Worker {
	return &Worker{
		jobID:    jobID,
		kindName: kind.Name(),
		kind:     kind,
		commands: make(chan Command, 1),
		events:   events,
		logger:   logger.With("job_id", jobID, "job_kind", kind.Name()),
	}
}

// Send delivers a cooperative command. Non-blocking: if the worker has
// already finished (its command channel is unread and full), the command
// is dropped rather than leaking a blocked sender.
func (w *Worker) Send(cmd Command) {
	select {
	case w.commands <- cmd:
	default:
	}
}

// Run executes state to completion, to a pause point, or to cancellation.
// It never returns an error: every failure mode is reported as an
// EventFailed JobEvent, since a worker failure must never propagate as a
// panic or bubbled error into the manager's own call stack.
func (w *Worker) Run(ctx context.Context, state *jobDomain.JobState) {
	wctx := &jobDomain.WorkerContext{JobID: w.jobID.String()}

	if state.Data == nil {
		signal, err := w.kind.Init(ctx, wctx, state)
		if err != nil {
			w.fail(err)
			return
		}
		if stopped := w.handleSignal(state, signal); stopped {
			return
		}
	}

	total := len(state.Steps) + int(state.StepNumber)
	for len(state.Steps) > 0 {
		if cmd, ok := w.poll(); ok {
			if w.applyCommand(state, cmd) {
				return
			}
		}

		w.emit(JobEvent{
			JobID:     w.jobID,
			Kind:      EventProgress,
			Completed: int(state.StepNumber),
			Total:     total,
			Phase:     "step",
		})

		signal, err := w.kind.ExecuteStep(ctx, wctx, state)
		if err != nil {
			w.fail(err)
			return
		}
		state.PopStep()
		if stopped := w.handleSignal(state, signal); stopped {
			return
		}

		if err := ctx.Err(); err != nil {
			w.fail(err)
			return
		}
	}

	w.finalize(ctx, wctx, state, total)
}

// poll performs a single non-blocking check for a pending command.
func (w *Worker) poll() (Command, bool) {
	select {
	case cmd := <-w.commands:
		return cmd, true
	default:
		return Command{}, false
	}
}

// applyCommand acts on a command observed at a step boundary. It returns
// true if the run has ended (paused or canceled) and the caller must stop.
func (w *Worker) applyCommand(state *jobDomain.JobState, cmd Command) bool {
	switch cmd.Kind {
	case CommandPause:
		w.pause(state)
		return true
	case CommandCancel:
		w.cancel(state)
		return true
	default:
		return false
	}
}

// handleSignal reacts to a JobKind-returned signal. It returns true if the
// run has ended and the caller must stop without reaching the step loop's
// natural exit or finalize.
func (w *Worker) handleSignal(state *jobDomain.JobState, signal jobDomain.JobSignal) bool {
	if signal.IsPaused() {
		w.pause(state)
		return true
	}
	if reason, ok := signal.IsEarlyFinish(); ok {
		w.logger.Info("job finishing early", "reason", reason)
		state.Steps = nil
	}
	return false
}

func (w *Worker) finalize(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState, total int) {
	metadata, signal, err := w.kind.Finalize(ctx, wctx, state)
	if err != nil {
		w.fail(err)
		return
	}
	if signal.IsPaused() {
		w.pause(state)
		return
	}
	w.emit(JobEvent{
		JobID:     w.jobID,
		Kind:      EventCompleted,
		Completed: int(state.StepNumber),
		Total:     total,
		Phase:     "finalize",
		Metadata:  metadata,
	})
}

func (w *Worker) pause(state *jobDomain.JobState) {
	seed, err := state.Encode()
	if err != nil {
		w.fail(err)
		return
	}
	w.emit(JobEvent{JobID: w.jobID, Kind: EventPaused, Seed: seed, Completed: int(state.StepNumber)})
}

func (w *Worker) cancel(state *jobDomain.JobState) {
	w.emit(JobEvent{JobID: w.jobID, Kind: EventCanceled, Completed: int(state.StepNumber)})
}

func (w *Worker) fail(err error) {
	w.logger.Error("job failed", "error", err)
	w.emit(JobEvent{JobID: w.jobID, Kind: EventFailed, Err: err})
}

func (w *Worker) emit(event JobEvent) {
	w.events <- event
}
