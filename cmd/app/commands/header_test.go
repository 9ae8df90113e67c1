package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

var testHashingParams = cryptoDomain.Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseHeaderAlgorithm(t *testing.T) {
	t.Run("xchacha20-poly1305", func(t *testing.T) {
		alg, err := parseHeaderAlgorithm("xchacha20-poly1305")
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.XChaCha20Poly1305, alg)
	})

	t.Run("aes-256-gcm", func(t *testing.T) {
		alg, err := parseHeaderAlgorithm("aes-256-gcm")
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.Aes256Gcm, alg)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseHeaderAlgorithm("rot13")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid algorithm")
	})
}

func TestRunCreateHeader(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	t.Run("success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "header.bin")
		err := RunCreateHeader(ctx, testHashingParams, logger, path, "xchacha20-poly1305", []byte("hunter2"))
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	})

	t.Run("invalid algorithm", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "header.bin")
		err := RunCreateHeader(ctx, testHashingParams, logger, path, "invalid", []byte("hunter2"))
		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestRunAddKeyslotAndUnlock(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	path := filepath.Join(t.TempDir(), "header.bin")

	require.NoError(t, RunCreateHeader(ctx, testHashingParams, logger, path, "aes-256-gcm", []byte("first-password")))

	t.Run("add keyslot with correct password", func(t *testing.T) {
		err := RunAddKeyslot(ctx, testHashingParams, logger, path, []byte("first-password"), []byte("second-password"))
		require.NoError(t, err)
	})

	t.Run("unlock with either password", func(t *testing.T) {
		require.NoError(t, RunUnlockHeader(ctx, testHashingParams, logger, path, []byte("first-password")))
		require.NoError(t, RunUnlockHeader(ctx, testHashingParams, logger, path, []byte("second-password")))
	})

	t.Run("unlock with wrong password fails", func(t *testing.T) {
		err := RunUnlockHeader(ctx, testHashingParams, logger, path, []byte("wrong-password"))
		require.Error(t, err)
	})

	t.Run("add keyslot with wrong existing password fails", func(t *testing.T) {
		err := RunAddKeyslot(ctx, testHashingParams, logger, path, []byte("wrong-password"), []byte("third-password"))
		require.Error(t, err)
	})
}

func TestRunUnlockHeader_MissingFile(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	err := RunUnlockHeader(ctx, testHashingParams, logger, filepath.Join(t.TempDir(), "missing.bin"), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read header file")
}
