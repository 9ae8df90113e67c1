package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	"github.com/allisson/jobcrypt/internal/header"
	headerDomain "github.com/allisson/jobcrypt/internal/header/domain"
	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

// HeaderRewrapJobName is the registered name for HeaderRewrapJob.
const HeaderRewrapJobName = "header_rewrap"

// HeaderRewrapJobInit is the Init payload: the stored header blobs to
// rotate, the Argon2id parameters they were hashed with, the old password
// that currently unlocks them, and the new password to protect them with
// going forward.
type HeaderRewrapJobInit struct {
	HeaderBlobs   [][]byte                    `json:"header_blobs"`
	HashingParams cryptoDomain.Argon2idParams `json:"hashing_params"`
	OldPassword   []byte                      `json:"old_password"`
	NewPassword   []byte                      `json:"new_password"`
}

// HeaderRewrapJobStep is one unit of work: rotate the keyslot password of a single header.
type HeaderRewrapJobStep struct {
	Index int `json:"index"`
}

// HeaderRewrapResult records the outcome of rotating one header.
type HeaderRewrapResult struct {
	Index        int    `json:"index"`
	RewrappedHex string `json:"rewrapped_hex,omitempty"`
	Error        string `json:"error,omitempty"`
}

// headerRewrapData is the durable Data populated by Init and grown by
// every ExecuteStep: everything ExecuteStep needs beyond the step index,
// plus every result produced so far. Kept in JobState rather than on
// HeaderRewrapJob so a pause/resume or a restart in a fresh process
// recovers exactly the results already produced.
type headerRewrapData struct {
	HeaderBlobs   [][]byte                    `json:"header_blobs"`
	HashingParams cryptoDomain.Argon2idParams `json:"hashing_params"`
	OldPassword   []byte                      `json:"old_password"`
	NewPassword   []byte                      `json:"new_password"`
	Results       []HeaderRewrapResult        `json:"results"`
}

// HeaderRewrapJob re-protects a batch of stored file headers under a new
// password, one header per step: it unlocks each header with the old
// password and replaces the header's first keyslot with one protected by
// the new password, keeping the same master key; any other keyslot is left
// unchanged. It is
// engine-internal (it only touches header package types) and resumable,
// so a rotation spanning many headers survives a restart partway through.
type HeaderRewrapJob struct{}

// NewHeaderRewrapJob constructs a HeaderRewrapJob.
func NewHeaderRewrapJob() *HeaderRewrapJob {
	return &HeaderRewrapJob{}
}

func (j *HeaderRewrapJob) Name() string { return HeaderRewrapJobName }

func (j *HeaderRewrapJob) Fingerprint(init json.RawMessage) string {
	return HeaderRewrapJobName + ":" + fmt.Sprintf("%x", init)
}

func (j *HeaderRewrapJob) Init(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (jobDomain.JobSignal, error) {
	var in HeaderRewrapJobInit
	if err := json.Unmarshal(state.Init, &in); err != nil {
		return jobDomain.SignalNone, fmt.Errorf("decode header rewrap init: %w", err)
	}
	if len(in.HeaderBlobs) == 0 {
		return jobDomain.SignalEarlyFinish("no headers supplied"), nil
	}

	data := headerRewrapData{
		HeaderBlobs:   in.HeaderBlobs,
		HashingParams: in.HashingParams,
		OldPassword:   in.OldPassword,
		NewPassword:   in.NewPassword,
	}
	if err := setHeaderRewrapData(state, data); err != nil {
		return jobDomain.SignalNone, err
	}

	steps := make([]json.RawMessage, 0, len(in.HeaderBlobs))
	for i := range in.HeaderBlobs {
		step, err := json.Marshal(HeaderRewrapJobStep{Index: i})
		if err != nil {
			return jobDomain.SignalNone, fmt.Errorf("encode header rewrap step: %w", err)
		}
		steps = append(steps, step)
	}
	state.Steps = steps
	return jobDomain.SignalNone, nil
}

func (j *HeaderRewrapJob) ExecuteStep(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (jobDomain.JobSignal, error) {
	data, err := headerRewrapJobData(state)
	if err != nil {
		return jobDomain.SignalNone, err
	}

	var step HeaderRewrapJobStep
	if err := json.Unmarshal(state.Steps[0], &step); err != nil {
		return jobDomain.SignalNone, fmt.Errorf("decode header rewrap step: %w", err)
	}

	result := j.rewrapOne(ctx, data, step.Index)
	data.Results = append(data.Results, result)

	if err := setHeaderRewrapData(state, data); err != nil {
		return jobDomain.SignalNone, err
	}
	return jobDomain.SignalNone, nil
}

func (j *HeaderRewrapJob) rewrapOne(ctx context.Context, data headerRewrapData, index int) HeaderRewrapResult {
	h, err := header.Deserialize(data.HeaderBlobs[index])
	if err != nil {
		return HeaderRewrapResult{Index: index, Error: fmt.Sprintf("deserialize header: %v", err)}
	}

	masterKey, err := h.DecryptMasterKeyWithPassword(ctx, data.HashingParams, data.OldPassword)
	if err != nil {
		return HeaderRewrapResult{Index: index, Error: fmt.Sprintf("unlock header: %v", err)}
	}
	defer masterKey.Zero()

	newSlot, err := headerDomain.NewKeyslot(ctx, h.Algorithm, cryptoDomain.Argon2id, data.HashingParams, data.NewPassword, masterKey)
	if err != nil {
		return HeaderRewrapResult{Index: index, Error: fmt.Sprintf("build new keyslot: %v", err)}
	}
	h.Keyslots[0] = newSlot

	rewrapped, err := h.Serialize()
	if err != nil {
		return HeaderRewrapResult{Index: index, Error: fmt.Sprintf("serialize header: %v", err)}
	}

	return HeaderRewrapResult{Index: index, RewrappedHex: fmt.Sprintf("%x", rewrapped)}
}

func (j *HeaderRewrapJob) Finalize(ctx context.Context, wctx *jobDomain.WorkerContext, state *jobDomain.JobState) (json.RawMessage, jobDomain.JobSignal, error) {
	data, err := headerRewrapJobData(state)
	if err != nil {
		return nil, jobDomain.SignalNone, err
	}

	metadata, err := json.Marshal(map[string]any{"results": data.Results})
	if err != nil {
		return nil, jobDomain.SignalNone, fmt.Errorf("encode header rewrap metadata: %w", err)
	}
	return metadata, jobDomain.SignalNone, nil
}

func headerRewrapJobData(state *jobDomain.JobState) (headerRewrapData, error) {
	var data headerRewrapData
	if state.Data == nil {
		return data, fmt.Errorf("header rewrap job: missing data, Init must run before ExecuteStep/Finalize")
	}
	if err := json.Unmarshal(*state.Data, &data); err != nil {
		return headerRewrapData{}, fmt.Errorf("decode header rewrap data: %w", err)
	}
	return data, nil
}

func setHeaderRewrapData(state *jobDomain.JobState, data headerRewrapData) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode header rewrap data: %w", err)
	}
	raw := json.RawMessage(dataBytes)
	state.Data = &raw
	return nil
}
