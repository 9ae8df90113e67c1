// Package usecase implements the job engine's dispatch, concurrency, and
// restoration logic, orchestrating job domain operations.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/jobcrypt/internal/database"
	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
	"github.com/allisson/jobcrypt/internal/job/worker"
)

// JobReportRepository defines job report persistence operations.
type JobReportRepository interface {
	Create(ctx context.Context, report *jobDomain.JobReport) error
	Update(ctx context.Context, report *jobDomain.JobReport) error
	Get(ctx context.Context, id uuid.UUID) (*jobDomain.JobReport, error)
	GetActive(ctx context.Context) ([]*jobDomain.JobReport, error)
}

// Config holds job manager tuning parameters.
type Config struct {
	// MaxConcurrentPerKind bounds how many jobs of the same kind run at
	// once; excess dispatches wait in that kind's FIFO queue.
	MaxConcurrentPerKind int
}

// UseCase defines the job manager's operations.
type UseCase interface {
	Register(factory jobDomain.Factory) error
	Dispatch(ctx context.Context, kindName string, init []byte) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*jobDomain.JobReport, error)
	Pause(ctx context.Context, id uuid.UUID) error
	Resume(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Subscribe() <-chan worker.JobEvent
	Restore(ctx context.Context) error
}

// running tracks one in-flight worker's bookkeeping.
type running struct {
	worker *worker.Worker
	report *jobDomain.JobReport
}

// JobManager dispatches new jobs, restores persisted jobs on startup,
// enforces per-kind concurrency with FIFO queuing, and persists JobReport
// transitions. Its active-set/queue bookkeeping is guarded by a single
// mutex, mirroring the rest of this codebase's use cases' preference for a
// plain lock over an actor/mailbox abstraction.
type JobManager struct {
	mu        sync.Mutex
	registry  *jobDomain.Registry
	repo      JobReportRepository
	txManager database.TxManager
	config    Config
	logger    *slog.Logger

	active  map[uuid.UUID]*running
	perKind map[string]int
	queued  map[string][]queuedJob

	subscribers chan worker.JobEvent
}

type queuedJob struct {
	kind   jobDomain.JobKind
	report *jobDomain.JobReport
	state  *jobDomain.JobState
}

// NewJobManager constructs a JobManager. Register every known JobKind on
// the returned manager before calling Restore.
func NewJobManager(
	registry *jobDomain.Registry,
	repo JobReportRepository,
	txManager database.TxManager,
	config Config,
	logger *slog.Logger,
) *JobManager {
	if config.MaxConcurrentPerKind <= 0 {
		config.MaxConcurrentPerKind = 1
	}
	return &JobManager{
		registry:    registry,
		repo:        repo,
		txManager:   txManager,
		config:      config,
		logger:      logger,
		active:      make(map[uuid.UUID]*running),
		perKind:     make(map[string]int),
		queued:      make(map[string][]queuedJob),
		subscribers: make(chan worker.JobEvent, 256),
	}
}

// Register adds factory to the underlying registry. Must be called before Restore.
func (m *JobManager) Register(factory jobDomain.Factory) error {
	return m.registry.Register(factory)
}

// Subscribe returns the manager's shared JobEvent stream. Every job,
// present and future, publishes on this one channel; callers filter by
// JobID for the job they care about.
func (m *JobManager) Subscribe() <-chan worker.JobEvent {
	return m.subscribers
}

// Get returns the persisted report for id, reading straight through to
// the repository since a report is durable state, not manager state.
func (m *JobManager) Get(ctx context.Context, id uuid.UUID) (*jobDomain.JobReport, error) {
	return m.repo.Get(ctx, id)
}

// Dispatch constructs a UUID, computes the (kind, hash(init)) fingerprint,
// and either returns an existing active job's UUID (dedup) or creates,
// persists, and enqueues a new JobReport.
func (m *JobManager) Dispatch(ctx context.Context, kindName string, init []byte) (uuid.UUID, error) {
	kind, err := m.registry.Lookup(kindName)
	if err != nil {
		return uuid.Nil, err
	}

	state := &jobDomain.JobState{Init: init}
	fingerprint := state.Fingerprint(kindName)

	if id, ok := m.findActiveFingerprint(kindName, fingerprint); ok {
		return id, nil
	}

	id := uuid.New()
	report := jobDomain.NewJobReport(id, kindName)
	seed, err := state.Encode()
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode initial job state: %w", err)
	}
	report.Seed = seed

	if err := m.txManager.WithTx(ctx, func(ctx context.Context) error {
		return m.repo.Create(ctx, report)
	}); err != nil {
		return uuid.Nil, fmt.Errorf("persist job report: %w", err)
	}

	m.enqueue(ctx, kind, report, state)
	return id, nil
}

func (m *JobManager) findActiveFingerprint(kindName, fingerprint string) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, r := range m.active {
		if r.report.Name == kindName && fingerprintOf(r.report) == fingerprint {
			return id, true
		}
	}
	for _, q := range m.queued[kindName] {
		if fingerprintOf(q.report) == fingerprint {
			return q.report.ID, true
		}
	}
	return uuid.Nil, false
}

// fingerprintOf recomputes a report's fingerprint from its persisted Seed.
func fingerprintOf(report *jobDomain.JobReport) string {
	state, err := jobDomain.DecodeJobState(report.Seed)
	if err != nil {
		return ""
	}
	return state.Fingerprint(report.Name)
}

// enqueue adds the job to its kind's FIFO queue and starts it immediately
// if the kind has spare concurrency.
func (m *JobManager) enqueue(ctx context.Context, kind jobDomain.JobKind, report *jobDomain.JobReport, state *jobDomain.JobState) {
	m.mu.Lock()
	if m.perKind[report.Name] >= m.config.MaxConcurrentPerKind {
		m.queued[report.Name] = append(m.queued[report.Name], queuedJob{kind: kind, report: report, state: state})
		m.mu.Unlock()
		return
	}
	m.perKind[report.Name]++
	m.mu.Unlock()

	m.start(ctx, kind, report, state)
}

// start launches a Worker for report/state and tracks it in the active set.
func (m *JobManager) start(ctx context.Context, kind jobDomain.JobKind, report *jobDomain.JobReport, state *jobDomain.JobState) {
	jobEvents := make(chan worker.JobEvent, 16)
	w := worker.New(report.ID, kind, jobEvents, m.logger)

	m.mu.Lock()
	m.active[report.ID] = &running{worker: w, report: report}
	m.mu.Unlock()

	now := time.Now()
	report.Status = jobDomain.JobStatusRunning
	report.StartedAt = &now
	m.persistReport(ctx, report)

	go w.Run(ctx, state)
	go m.relay(ctx, kind, report, jobEvents)
}

// relay forwards one job's private event stream to the public Subscribe
// channel and reacts to its terminal/pause event by persisting the report
// and, once the kind has spare capacity again, starting the next queued job.
func (m *JobManager) relay(ctx context.Context, kind jobDomain.JobKind, report *jobDomain.JobReport, jobEvents <-chan worker.JobEvent) {
	for event := range jobEvents {
		m.publish(event)

		switch event.Kind {
		case worker.EventPaused:
			m.onTerminalOrPaused(ctx, report, jobDomain.JobStatusPaused, event.Seed, nil)
			return
		case worker.EventCompleted:
			m.onTerminalOrPaused(ctx, report, jobDomain.JobStatusCompleted, nil, event.Metadata)
			return
		case worker.EventFailed:
			m.onTerminalOrPaused(ctx, report, jobDomain.JobStatusFailed, nil, nil)
			return
		case worker.EventCanceled:
			m.onTerminalOrPaused(ctx, report, jobDomain.JobStatusCanceled, nil, nil)
			return
		}
	}
}

// publish forwards event to subscribers without blocking the relay
// goroutine forever if nobody is reading; a full buffer drops the event
// rather than stalling job execution.
func (m *JobManager) publish(event worker.JobEvent) {
	select {
	case m.subscribers <- event:
	default:
	}
}

func (m *JobManager) onTerminalOrPaused(
	ctx context.Context,
	report *jobDomain.JobReport,
	status jobDomain.JobStatus,
	seed []byte,
	metadata []byte,
) {
	now := time.Now()
	report.Status = status
	report.Seed = seed
	if status.IsTerminal() {
		report.FinishedAt = &now
	}
	if metadata != nil {
		raw := json.RawMessage(metadata)
		report.Metadata = &raw
	}
	m.persistReport(ctx, report)

	m.mu.Lock()
	delete(m.active, report.ID)
	m.perKind[report.Name]--
	next, ok := m.popQueued(report.Name)
	m.mu.Unlock()

	if ok {
		m.enqueue(ctx, next.kind, next.report, next.state)
	}
}

func (m *JobManager) popQueued(kindName string) (queuedJob, bool) {
	q := m.queued[kindName]
	if len(q) == 0 {
		return queuedJob{}, false
	}
	next := q[0]
	m.queued[kindName] = q[1:]
	return next, true
}

func (m *JobManager) persistReport(ctx context.Context, report *jobDomain.JobReport) {
	if err := m.txManager.WithTx(ctx, func(ctx context.Context) error {
		return m.repo.Update(ctx, report)
	}); err != nil {
		m.logger.Error("persist job report failed", "job_id", report.ID, "error", err)
	}
}

// Pause sends a cooperative pause command to the active worker for id.
// Returns jobDomain.ErrJobNotActive if no such worker is running.
func (m *JobManager) Pause(ctx context.Context, id uuid.UUID) error {
	return m.sendCommand(id, worker.Command{Kind: worker.CommandPause})
}

// Cancel sends a cooperative cancel command to the active worker for id.
func (m *JobManager) Cancel(ctx context.Context, id uuid.UUID) error {
	return m.sendCommand(id, worker.Command{Kind: worker.CommandCancel})
}

func (m *JobManager) sendCommand(id uuid.UUID, cmd worker.Command) error {
	m.mu.Lock()
	r, ok := m.active[id]
	m.mu.Unlock()
	if !ok {
		return jobDomain.ErrJobNotActive
	}
	r.worker.Send(cmd)
	return nil
}

// Resume restarts a Paused job from its persisted seed, respecting the
// same per-kind concurrency limit as a fresh Dispatch.
func (m *JobManager) Resume(ctx context.Context, id uuid.UUID) error {
	report, err := m.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if report.Status != jobDomain.JobStatusPaused {
		return jobDomain.ErrJobNotActive
	}
	if len(report.Seed) == 0 {
		return jobDomain.ErrMissingJobDataState
	}

	kind, err := m.registry.Lookup(report.Name)
	if err != nil {
		return err
	}
	state, err := jobDomain.DecodeJobState(report.Seed)
	if err != nil {
		return fmt.Errorf("decode job seed: %w", err)
	}

	m.enqueue(ctx, kind, report, &state)
	return nil
}

// Restore enumerates persisted active reports at startup, treats any
// Running report as Paused (the process died mid-run), and resumes each
// via the same path Resume uses. Unknown job kinds mark the report Failed
// instead of blocking startup. The registry is frozen for further
// Register calls once restoration begins.
func (m *JobManager) Restore(ctx context.Context) error {
	m.registry.MarkRestored()

	reports, err := m.repo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active job reports: %w", err)
	}

	for _, report := range reports {
		if report.Status == jobDomain.JobStatusRunning {
			report.Status = jobDomain.JobStatusPaused
		}
		if report.Status != jobDomain.JobStatusPaused && report.Status != jobDomain.JobStatusQueued {
			continue
		}

		kind, err := m.registry.Lookup(report.Name)
		if err != nil {
			report.Status = jobDomain.JobStatusFailed
			now := time.Now()
			report.FinishedAt = &now
			m.persistReport(ctx, report)
			m.logger.Error("unknown job name on restore", "job_id", report.ID, "name", report.Name)
			continue
		}

		if len(report.Seed) == 0 {
			report.Status = jobDomain.JobStatusFailed
			now := time.Now()
			report.FinishedAt = &now
			m.persistReport(ctx, report)
			m.logger.Error("missing job seed on restore", "job_id", report.ID, "name", report.Name)
			continue
		}

		state, err := jobDomain.DecodeJobState(report.Seed)
		if err != nil {
			report.Status = jobDomain.JobStatusFailed
			now := time.Now()
			report.FinishedAt = &now
			m.persistReport(ctx, report)
			m.logger.Error("corrupt job seed on restore", "job_id", report.ID, "error", err)
			continue
		}

		m.enqueue(ctx, kind, report, &state)
	}

	return nil
}
