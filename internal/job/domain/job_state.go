package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// JobState is the durable working state of one job run. A job kind's Init
// payload is fixed at dispatch time; Data is populated once Init completes;
// Steps is a FIFO queue of remaining work, consumed front-to-back and
// sometimes appended to mid-run.
//
// JobState is intentionally generic over the job kind's own payload shapes
// via json.RawMessage rather than Go generics: the engine dispatches job
// kinds dynamically by name (see JobKind/Registry), so it can never know a
// concrete Init/Data/Step type at compile time. Each JobKind implementation
// is free to unmarshal its own raw messages into whatever types it likes.
type JobState struct {
	Init       json.RawMessage   `json:"init"`
	Data       *json.RawMessage  `json:"data,omitempty"`
	Steps      []json.RawMessage `json:"steps"`
	StepNumber uint64            `json:"step_number"`
}

// Fingerprint returns a stable identifier for (kindName, Init): two
// dispatches of the same kind with byte-identical Init JSON produce the
// same fingerprint, which JobManager.Dispatch uses to deduplicate.
func (s JobState) Fingerprint(kindName string) string {
	sum := sha256.Sum256(s.Init)
	return kindName + ":" + hex.EncodeToString(sum[:])
}

// Encode serializes the state as JSON, the format persisted as a
// JobReport's Seed when a job pauses.
func (s JobState) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode job state: %w", err)
	}
	return b, nil
}

// DecodeJobState is the inverse of Encode.
func DecodeJobState(b []byte) (JobState, error) {
	var s JobState
	if err := json.Unmarshal(b, &s); err != nil {
		return JobState{}, fmt.Errorf("decode job state: %w", err)
	}
	return s, nil
}

// PopStep removes and returns the front of Steps, incrementing StepNumber.
// Callers must check len(s.Steps) > 0 first.
func (s *JobState) PopStep() json.RawMessage {
	step := s.Steps[0]
	s.Steps = s.Steps[1:]
	s.StepNumber++
	return step
}

// PushStep appends a new step to the back of the queue. Job kinds call
// this from ExecuteStep to enqueue work discovered mid-run (e.g. an
// indexer finding a subdirectory).
func (s *JobState) PushStep(step json.RawMessage) {
	s.Steps = append(s.Steps, step)
}
