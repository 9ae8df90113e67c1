// Package jobs holds the engine's reference JobKind implementations:
// indexjob walks a directory tree, thumbnailjob processes a fixed file
// list, and headerrewrapjob replaces a stored file header's first keyslot
// with one protected by a new password.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

// IndexJobName is the registered name for IndexJob.
const IndexJobName = "index"

// IndexJobInit is the Init payload: the root directory to walk.
type IndexJobInit struct {
	RootPath string `json:"root_path"`
}

// IndexJobData is the durable Data populated by Init and grown by every
// ExecuteStep: the root path plus every entry discovered so far. Keeping
// Entries here, instead of on IndexJob itself, is what lets a pause/resume
// or a restart in a fresh process recover exactly the work already done —
// IndexJob holds no state of its own between calls.
type IndexJobData struct {
	RootPath string         `json:"root_path"`
	Entries  []IndexedEntry `json:"entries"`
}

// IndexJobStep is one unit of work: index the entries of a single
// directory, enqueuing any subdirectories found as further steps.
type IndexJobStep struct {
	DirPath string `json:"dir_path"`
}

// IndexedEntry is one file or directory discovered during a run,
// accumulated and returned as Finalize's metadata.
type IndexedEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// IndexJob walks a directory tree breadth-first, one step per directory
// level, discovering library contents for the application to later
// identify and thumbnail. It does not itself classify or thumbnail files
// — those algorithms are supplied by other registered job kinds. IndexJob
// keeps no mutable fields of its own: every Registry Lookup hands a
// fresh instance to a new run, and all working data lives in JobState.
type IndexJob struct{}

// NewIndexJob constructs an IndexJob.
func NewIndexJob() *IndexJob {
	return &IndexJob{}
}

func (j *IndexJob) Name() string { return IndexJobName }

func (j *IndexJob) Fingerprint(init json.RawMessage) string {
	var in IndexJobInit
	_ = json.Unmarshal(init, &in)
	return IndexJobName + ":" + filepath.Clean(in.RootPath)
}

func (j *IndexJob) Init(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (jobDomain.JobSignal, error) {
	var in IndexJobInit
	if err := json.Unmarshal(state.Init, &in); err != nil {
		return jobDomain.SignalNone, fmt.Errorf("decode index job init: %w", err)
	}
	if in.RootPath == "" {
		return jobDomain.SignalEarlyFinish("empty root path"), nil
	}

	if err := setIndexJobData(state, IndexJobData{RootPath: in.RootPath}); err != nil {
		return jobDomain.SignalNone, err
	}

	step, err := json.Marshal(IndexJobStep{DirPath: in.RootPath})
	if err != nil {
		return jobDomain.SignalNone, fmt.Errorf("encode index job step: %w", err)
	}
	state.Steps = []json.RawMessage{step}
	return jobDomain.SignalNone, nil
}

func (j *IndexJob) ExecuteStep(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (jobDomain.JobSignal, error) {
	var step IndexJobStep
	if err := json.Unmarshal(state.Steps[0], &step); err != nil {
		return jobDomain.SignalNone, fmt.Errorf("decode index job step: %w", err)
	}

	data, err := indexJobData(state)
	if err != nil {
		return jobDomain.SignalNone, err
	}

	entries, err := os.ReadDir(step.DirPath)
	if err != nil {
		return jobDomain.SignalNone, fmt.Errorf("read directory %s: %w", step.DirPath, err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(step.DirPath, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return jobDomain.SignalNone, fmt.Errorf("stat %s: %w", fullPath, err)
		}

		data.Entries = append(data.Entries, IndexedEntry{
			Path:  fullPath,
			IsDir: entry.IsDir(),
			Size:  info.Size(),
		})

		if entry.IsDir() {
			next, err := json.Marshal(IndexJobStep{DirPath: fullPath})
			if err != nil {
				return jobDomain.SignalNone, fmt.Errorf("encode index job step: %w", err)
			}
			state.PushStep(next)
		}
	}

	if err := setIndexJobData(state, data); err != nil {
		return jobDomain.SignalNone, err
	}
	return jobDomain.SignalNone, nil
}

func (j *IndexJob) Finalize(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (json.RawMessage, jobDomain.JobSignal, error) {
	data, err := indexJobData(state)
	if err != nil {
		return nil, jobDomain.SignalNone, err
	}

	metadata, err := json.Marshal(map[string]any{
		"entry_count": len(data.Entries),
		"entries":     data.Entries,
	})
	if err != nil {
		return nil, jobDomain.SignalNone, fmt.Errorf("encode index job metadata: %w", err)
	}
	return metadata, jobDomain.SignalNone, nil
}

func indexJobData(state *jobDomain.JobState) (IndexJobData, error) {
	var data IndexJobData
	if state.Data == nil {
		return data, fmt.Errorf("index job: missing data, Init must run before ExecuteStep/Finalize")
	}
	if err := json.Unmarshal(*state.Data, &data); err != nil {
		return IndexJobData{}, fmt.Errorf("decode index job data: %w", err)
	}
	return data, nil
}

func setIndexJobData(state *jobDomain.JobState, data IndexJobData) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode index job data: %w", err)
	}
	raw := json.RawMessage(dataBytes)
	state.Data = &raw
	return nil
}
