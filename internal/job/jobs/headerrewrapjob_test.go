package jobs

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	"github.com/allisson/jobcrypt/internal/header"
	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

func cheapHashingParams() cryptoDomain.Argon2idParams {
	return cryptoDomain.Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}
}

func buildTestHeader(t *testing.T, password []byte) []byte {
	t.Helper()
	h, err := header.NewFileHeader(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	require.NoError(t, h.AddKeyslot(context.Background(), cheapHashingParams(), password, masterKey))

	blob, err := h.Serialize()
	require.NoError(t, err)
	return blob
}

func TestHeaderRewrapJob_RotatesPassword(t *testing.T) {
	oldPassword := []byte("old-password")
	newPassword := []byte("new-password")
	blob := buildTestHeader(t, oldPassword)

	job := NewHeaderRewrapJob()
	initBytes, err := json.Marshal(HeaderRewrapJobInit{
		HeaderBlobs:   [][]byte{blob},
		HashingParams: cheapHashingParams(),
		OldPassword:   oldPassword,
		NewPassword:   newPassword,
	})
	require.NoError(t, err)
	state := &jobDomain.JobState{Init: initBytes}
	wctx := &jobDomain.WorkerContext{}

	_, err = job.Init(context.Background(), wctx, state)
	require.NoError(t, err)
	require.Len(t, state.Steps, 1)

	signal, err := job.ExecuteStep(context.Background(), wctx, state)
	require.NoError(t, err)
	assert.True(t, signal.IsNone())

	metadata, _, err := job.Finalize(context.Background(), wctx, state)
	require.NoError(t, err)

	var out struct {
		Results []HeaderRewrapResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(metadata, &out))
	require.Len(t, out.Results, 1)
	require.Empty(t, out.Results[0].Error)
	require.NotEmpty(t, out.Results[0].RewrappedHex)

	rewrapped, err := hex.DecodeString(out.Results[0].RewrappedHex)
	require.NoError(t, err)

	newHeader, err := header.Deserialize(rewrapped)
	require.NoError(t, err)

	_, err = newHeader.DecryptMasterKeyWithPassword(context.Background(), cheapHashingParams(), oldPassword)
	assert.Error(t, err)

	_, err = newHeader.DecryptMasterKeyWithPassword(context.Background(), cheapHashingParams(), newPassword)
	assert.NoError(t, err)
}

func TestHeaderRewrapJob_WrongOldPasswordRecordsError(t *testing.T) {
	blob := buildTestHeader(t, []byte("correct-password"))

	job := NewHeaderRewrapJob()
	initBytes, err := json.Marshal(HeaderRewrapJobInit{
		HeaderBlobs:   [][]byte{blob},
		HashingParams: cheapHashingParams(),
		OldPassword:   []byte("wrong-password"),
		NewPassword:   []byte("new-password"),
	})
	require.NoError(t, err)
	state := &jobDomain.JobState{Init: initBytes}
	wctx := &jobDomain.WorkerContext{}

	_, err = job.Init(context.Background(), wctx, state)
	require.NoError(t, err)

	_, err = job.ExecuteStep(context.Background(), wctx, state)
	require.NoError(t, err)

	data, err := headerRewrapJobData(state)
	require.NoError(t, err)
	require.Len(t, data.Results, 1)
	assert.NotEmpty(t, data.Results[0].Error)
}

func TestHeaderRewrapJob_EmptyBlobsEarlyFinishes(t *testing.T) {
	job := NewHeaderRewrapJob()
	initBytes, err := json.Marshal(HeaderRewrapJobInit{})
	require.NoError(t, err)
	state := &jobDomain.JobState{Init: initBytes}

	signal, err := job.Init(context.Background(), &jobDomain.WorkerContext{}, state)
	require.NoError(t, err)
	_, ok := signal.IsEarlyFinish()
	assert.True(t, ok)
}
