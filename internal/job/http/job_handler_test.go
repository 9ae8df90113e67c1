package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
	"github.com/allisson/jobcrypt/internal/job/http/dto"
	"github.com/allisson/jobcrypt/internal/job/worker"
)

// fakeJobUseCase is a hand-rolled stand-in for jobUseCase.UseCase: the
// corpus's mockery-generated mocks need `go generate`, which this module
// never runs, so handler tests drive a small fake instead.
type fakeJobUseCase struct {
	dispatchID  uuid.UUID
	dispatchErr error
	getReport   *jobDomain.JobReport
	getErr      error
	pauseErr    error
	resumeErr   error
	cancelErr   error
	events      chan worker.JobEvent

	lastDispatchName string
	lastDispatchInit []byte
	lastID           uuid.UUID
}

func (f *fakeJobUseCase) Register(jobDomain.Factory) error { return nil }

func (f *fakeJobUseCase) Dispatch(ctx context.Context, kindName string, init []byte) (uuid.UUID, error) {
	f.lastDispatchName = kindName
	f.lastDispatchInit = init
	return f.dispatchID, f.dispatchErr
}

func (f *fakeJobUseCase) Get(ctx context.Context, id uuid.UUID) (*jobDomain.JobReport, error) {
	f.lastID = id
	return f.getReport, f.getErr
}

func (f *fakeJobUseCase) Pause(ctx context.Context, id uuid.UUID) error {
	f.lastID = id
	return f.pauseErr
}

func (f *fakeJobUseCase) Resume(ctx context.Context, id uuid.UUID) error {
	f.lastID = id
	return f.resumeErr
}

func (f *fakeJobUseCase) Cancel(ctx context.Context, id uuid.UUID) error {
	f.lastID = id
	return f.cancelErr
}

func (f *fakeJobUseCase) Subscribe() <-chan worker.JobEvent { return f.events }

func (f *fakeJobUseCase) Restore(ctx context.Context) error { return nil }

func setupTestHandler() (*JobHandler, *fakeJobUseCase) {
	gin.SetMode(gin.TestMode)
	uc := &fakeJobUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewJobHandler(uc, logger), uc
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestJobHandler_DispatchHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, uc := setupTestHandler()
		uc.dispatchID = uuid.Must(uuid.NewV7())

		c, w := createTestContext("POST", "/v1/jobs", dto.DispatchJobRequest{
			Name: "index",
			Init: json.RawMessage(`{"root_path":"/tmp"}`),
		})

		handler.DispatchHandler(c)

		assert.Equal(t, 202, w.Code)
		assert.Equal(t, "index", uc.lastDispatchName)

		var resp dto.DispatchJobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, uc.dispatchID.String(), resp.ID)
	})

	t.Run("validation failure empty name", func(t *testing.T) {
		handler, _ := setupTestHandler()

		c, w := createTestContext("POST", "/v1/jobs", dto.DispatchJobRequest{
			Name: "",
			Init: json.RawMessage(`{}`),
		})

		handler.DispatchHandler(c)
		assert.Equal(t, 400, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		handler, _ := setupTestHandler()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest("POST", "/v1/jobs", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		handler.DispatchHandler(c)
		assert.Equal(t, 400, w.Code)
	})
}

func TestJobHandler_GetHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, uc := setupTestHandler()
		report := jobDomain.NewJobReport(uuid.Must(uuid.NewV7()), "index")
		uc.getReport = report

		c, w := createTestContext("GET", "/v1/jobs/"+report.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: report.ID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, 200, w.Code)
		assert.Equal(t, report.ID, uc.lastID)
	})

	t.Run("invalid id", func(t *testing.T) {
		handler, _ := setupTestHandler()

		c, w := createTestContext("GET", "/v1/jobs/not-a-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		handler.GetHandler(c)
		assert.Equal(t, 400, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		handler, uc := setupTestHandler()
		uc.getErr = jobDomain.ErrJobNotFound

		id := uuid.Must(uuid.NewV7())
		c, w := createTestContext("GET", "/v1/jobs/"+id.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		handler.GetHandler(c)
		assert.Equal(t, 404, w.Code)
	})
}

func TestJobHandler_PauseResumeCancelHandlers(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	t.Run("pause", func(t *testing.T) {
		handler, uc := setupTestHandler()
		c, w := createTestContext("POST", "/v1/jobs/"+id.String()+"/pause", nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		handler.PauseHandler(c)
		assert.Equal(t, 202, w.Code)
		assert.Equal(t, id, uc.lastID)
	})

	t.Run("resume", func(t *testing.T) {
		handler, uc := setupTestHandler()
		c, w := createTestContext("POST", "/v1/jobs/"+id.String()+"/resume", nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		handler.ResumeHandler(c)
		assert.Equal(t, 202, w.Code)
		assert.Equal(t, id, uc.lastID)
	})

	t.Run("cancel", func(t *testing.T) {
		handler, uc := setupTestHandler()
		c, w := createTestContext("POST", "/v1/jobs/"+id.String()+"/cancel", nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		handler.CancelHandler(c)
		assert.Equal(t, 202, w.Code)
		assert.Equal(t, id, uc.lastID)
	})

	t.Run("cancel not active", func(t *testing.T) {
		handler, uc := setupTestHandler()
		uc.cancelErr = jobDomain.ErrJobNotActive

		c, w := createTestContext("POST", "/v1/jobs/"+id.String()+"/cancel", nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		handler.CancelHandler(c)
		assert.Equal(t, 422, w.Code)
	})
}
