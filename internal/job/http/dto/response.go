// Package dto provides data transfer objects for job HTTP request and response handling.
package dto

import (
	"encoding/json"
	"time"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

// DispatchJobResponse is returned when a job run is accepted.
type DispatchJobResponse struct {
	ID string `json:"id"`
}

// JobReportResponse represents a job report in API responses.
type JobReportResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Status             string           `json:"status"`
	TaskCount          int              `json:"task_count"`
	CompletedTaskCount int              `json:"completed_task_count"`
	CreatedAt          time.Time        `json:"created_at"`
	StartedAt          *time.Time       `json:"started_at,omitempty"`
	FinishedAt         *time.Time       `json:"finished_at,omitempty"`
	Metadata           *json.RawMessage `json:"metadata,omitempty"`
}

// MapJobReportToResponse converts a domain job report to an API response.
func MapJobReportToResponse(report *jobDomain.JobReport) JobReportResponse {
	return JobReportResponse{
		ID:                 report.ID.String(),
		Name:               report.Name,
		Status:             report.Status.String(),
		TaskCount:          report.TaskCount,
		CompletedTaskCount: report.CompletedTaskCount,
		CreatedAt:          report.CreatedAt,
		StartedAt:          report.StartedAt,
		FinishedAt:         report.FinishedAt,
		Metadata:           report.Metadata,
	}
}

// JobEventResponse represents one SSE-streamed job progress event.
type JobEventResponse struct {
	JobID     string          `json:"job_id"`
	Kind      string          `json:"kind"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Phase     string          `json:"phase,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Error     string          `json:"error,omitempty"`
}
