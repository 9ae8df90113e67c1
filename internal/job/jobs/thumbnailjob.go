package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

// ThumbnailJobName is the registered name for ThumbnailJob.
const ThumbnailJobName = "thumbnail"

// ThumbnailJobInit is the Init payload: the fixed list of file paths to thumbnail.
type ThumbnailJobInit struct {
	Paths []string `json:"paths"`
}

// ThumbnailJobStep is one unit of work: generate a thumbnail for one path.
type ThumbnailJobStep struct {
	Path string `json:"path"`
}

// ThumbnailResult records the outcome of thumbnailing one path.
type ThumbnailResult struct {
	Path         string `json:"path"`
	ThumbnailKey string `json:"thumbnail_key,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ThumbnailJobData is the durable Data populated by Init and grown by
// every ExecuteStep: every result produced so far. Kept in JobState rather
// than on ThumbnailJob so a pause/resume or a restart in a fresh process
// recovers exactly the results already produced.
type ThumbnailJobData struct {
	Results []ThumbnailResult `json:"results"`
}

// Generator produces a thumbnail for a single source path and returns a
// storage key identifying where it was written. The actual image/video
// decoding and scaling algorithm is an external collaborator the engine
// only invokes; ThumbnailJob is agnostic to its implementation.
type Generator interface {
	Generate(ctx context.Context, path string) (thumbnailKey string, err error)
}

// ThumbnailJob generates one thumbnail per input path, one step per path,
// tolerating per-file failures without failing the whole run. generator is
// a stateless, read-only collaborator shared across runs; it is not
// per-run output and is safe to reuse from a single registered factory.
type ThumbnailJob struct {
	generator Generator
}

// NewThumbnailJob constructs a ThumbnailJob that delegates actual
// thumbnail generation to generator.
func NewThumbnailJob(generator Generator) *ThumbnailJob {
	return &ThumbnailJob{generator: generator}
}

func (j *ThumbnailJob) Name() string { return ThumbnailJobName }

func (j *ThumbnailJob) Fingerprint(init json.RawMessage) string {
	return ThumbnailJobName + ":" + string(init)
}

func (j *ThumbnailJob) Init(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (jobDomain.JobSignal, error) {
	var in ThumbnailJobInit
	if err := json.Unmarshal(state.Init, &in); err != nil {
		return jobDomain.SignalNone, fmt.Errorf("decode thumbnail job init: %w", err)
	}
	if len(in.Paths) == 0 {
		return jobDomain.SignalEarlyFinish("no paths supplied"), nil
	}

	if err := setThumbnailJobData(state, ThumbnailJobData{}); err != nil {
		return jobDomain.SignalNone, err
	}

	steps := make([]json.RawMessage, 0, len(in.Paths))
	for _, path := range in.Paths {
		step, err := json.Marshal(ThumbnailJobStep{Path: path})
		if err != nil {
			return jobDomain.SignalNone, fmt.Errorf("encode thumbnail job step: %w", err)
		}
		steps = append(steps, step)
	}
	state.Steps = steps
	return jobDomain.SignalNone, nil
}

func (j *ThumbnailJob) ExecuteStep(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (jobDomain.JobSignal, error) {
	var step ThumbnailJobStep
	if err := json.Unmarshal(state.Steps[0], &step); err != nil {
		return jobDomain.SignalNone, fmt.Errorf("decode thumbnail job step: %w", err)
	}

	data, err := thumbnailJobData(state)
	if err != nil {
		return jobDomain.SignalNone, err
	}

	key, genErr := j.generator.Generate(ctx, step.Path)
	if genErr != nil {
		data.Results = append(data.Results, ThumbnailResult{Path: step.Path, Error: genErr.Error()})
	} else {
		data.Results = append(data.Results, ThumbnailResult{Path: step.Path, ThumbnailKey: key})
	}

	if err := setThumbnailJobData(state, data); err != nil {
		return jobDomain.SignalNone, err
	}
	return jobDomain.SignalNone, nil
}

func (j *ThumbnailJob) Finalize(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (json.RawMessage, jobDomain.JobSignal, error) {
	data, err := thumbnailJobData(state)
	if err != nil {
		return nil, jobDomain.SignalNone, err
	}

	metadata, err := json.Marshal(map[string]any{"results": data.Results})
	if err != nil {
		return nil, jobDomain.SignalNone, fmt.Errorf("encode thumbnail job metadata: %w", err)
	}
	return metadata, jobDomain.SignalNone, nil
}

func thumbnailJobData(state *jobDomain.JobState) (ThumbnailJobData, error) {
	var data ThumbnailJobData
	if state.Data == nil {
		return data, fmt.Errorf("thumbnail job: missing data, Init must run before ExecuteStep/Finalize")
	}
	if err := json.Unmarshal(*state.Data, &data); err != nil {
		return ThumbnailJobData{}, fmt.Errorf("decode thumbnail job data: %w", err)
	}
	return data, nil
}

func setThumbnailJobData(state *jobDomain.JobState, data ThumbnailJobData) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode thumbnail job data: %w", err)
	}
	raw := json.RawMessage(dataBytes)
	state.Data = &raw
	return nil
}
