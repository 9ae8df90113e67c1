package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/jobcrypt/internal/job/http/dto"
	"github.com/allisson/jobcrypt/internal/job/worker"
)

// EventsHandler streams every job's progress events as Server-Sent Events.
// GET /v1/jobs/events - Each event is a JSON-encoded dto.JobEventResponse.
// The stream never completes on its own; it ends when the client
// disconnects or the request context is canceled.
func (h *JobHandler) EventsHandler(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "streaming not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := h.jobUseCase.Subscribe()
	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(c, event); err != nil {
				h.logger.Warn("failed to write job event", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, event worker.JobEvent) error {
	payload := dto.JobEventResponse{
		JobID:     event.JobID.String(),
		Kind:      event.Kind.String(),
		Completed: event.Completed,
		Total:     event.Total,
		Phase:     event.Phase,
		Metadata:  event.Metadata,
	}
	if event.Err != nil {
		payload.Error = event.Err.Error()
	}

	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: ", payload.Kind); err != nil {
		return err
	}
	if err := json.NewEncoder(c.Writer).Encode(payload); err != nil {
		return err
	}
	_, err := fmt.Fprint(c.Writer, "\n")
	return err
}
