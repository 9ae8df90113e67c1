// Package http provides HTTP handlers for dispatching and observing jobs.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/jobcrypt/internal/httputil"
	"github.com/allisson/jobcrypt/internal/job/http/dto"
	jobUseCase "github.com/allisson/jobcrypt/internal/job/usecase"
	customValidation "github.com/allisson/jobcrypt/internal/validation"
)

// JobHandler handles HTTP requests for dispatching, inspecting, and
// controlling job runs.
type JobHandler struct {
	jobUseCase jobUseCase.UseCase
	logger     *slog.Logger
}

// NewJobHandler creates a new job handler with required dependencies.
func NewJobHandler(jobUseCase jobUseCase.UseCase, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobUseCase: jobUseCase, logger: logger}
}

// DispatchHandler dispatches a new job run.
// POST /v1/jobs - Returns 202 Accepted with the job id (an existing active
// job's id if an identical run is already in flight or queued).
func (h *JobHandler) DispatchHandler(c *gin.Context) {
	var req dto.DispatchJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	id, err := h.jobUseCase.Dispatch(c.Request.Context(), req.Name, req.Init)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.DispatchJobResponse{ID: id.String()})
}

// GetHandler returns a job report by id.
// GET /v1/jobs/:id
func (h *JobHandler) GetHandler(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		return
	}

	report, err := h.jobUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapJobReportToResponse(report))
}

// PauseHandler requests cooperative pause of a running job.
// POST /v1/jobs/:id/pause
func (h *JobHandler) PauseHandler(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		return
	}
	if err := h.jobUseCase.Pause(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusAccepted)
}

// ResumeHandler resumes a paused job from its persisted seed.
// POST /v1/jobs/:id/resume
func (h *JobHandler) ResumeHandler(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		return
	}
	if err := h.jobUseCase.Resume(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusAccepted)
}

// CancelHandler requests cooperative cancellation of a job.
// POST /v1/jobs/:id/cancel
func (h *JobHandler) CancelHandler(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		return
	}
	if err := h.jobUseCase.Cancel(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusAccepted)
}

// parseID extracts and parses the :id URL parameter, writing a 400
// response itself on failure so handlers can early-return on a non-nil error.
func (h *JobHandler) parseID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid job id: %w", err), h.logger)
		return uuid.Nil, err
	}
	return id, nil
}
