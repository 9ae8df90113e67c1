package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus is a job's lifecycle state, stored as a small int column.
type JobStatus int

const (
	// JobStatusQueued is the initial status: dispatched but not yet picked up by a worker.
	JobStatusQueued JobStatus = iota + 1
	// JobStatusRunning means a worker is actively executing the job.
	JobStatusRunning
	// JobStatusPaused means the job stopped cooperatively at a step boundary; Seed holds its state.
	JobStatusPaused
	// JobStatusCompleted is a terminal success status.
	JobStatusCompleted
	// JobStatusFailed is a terminal failure status.
	JobStatusFailed
	// JobStatusCanceled is a terminal status reached via cooperative cancellation.
	JobStatusCanceled
)

// String renders the status for logging and the HTTP API.
func (s JobStatus) String() string {
	switch s {
	case JobStatusQueued:
		return "queued"
	case JobStatusRunning:
		return "running"
	case JobStatusPaused:
		return "paused"
	case JobStatusCompleted:
		return "completed"
	case JobStatusFailed:
		return "failed"
	case JobStatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// IsActive reports whether s is one the manager still tracks as live work
// (eligible for Pause/Resume/Cancel and for dispatch dedup).
func (s JobStatus) IsActive() bool {
	return s == JobStatusQueued || s == JobStatusRunning || s == JobStatusPaused
}

// IsTerminal reports whether s will never transition again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCanceled
}

// JobReport is the durable, application-visible record of one job run. A
// Worker updates it in place as the job progresses; a JobManager persists
// it through JobReportRepository.
type JobReport struct {
	ID                 uuid.UUID
	Name               string
	Status             JobStatus
	CreatedAt          time.Time
	StartedAt          *time.Time
	FinishedAt         *time.Time
	CompletedTaskCount int
	TaskCount          int
	Metadata           *json.RawMessage
	Seed               []byte
}

// NewJobReport creates a freshly dispatched report in the Queued status.
func NewJobReport(id uuid.UUID, name string) *JobReport {
	return &JobReport{
		ID:        id,
		Name:      name,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
	}
}
