package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNonce(t *testing.T) {
	t.Run("xchacha20-poly1305 is 24 bytes", func(t *testing.T) {
		n, err := GenerateNonce(XChaCha20Poly1305)
		require.NoError(t, err)
		assert.Equal(t, 24, n.Len())
	})

	t.Run("aes-256-gcm is 12 bytes", func(t *testing.T) {
		n, err := GenerateNonce(Aes256Gcm)
		require.NoError(t, err)
		assert.Equal(t, 12, n.Len())
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := GenerateNonce(Algorithm("unknown"))
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("two calls produce different nonces", func(t *testing.T) {
		n1, err := GenerateNonce(Aes256Gcm)
		require.NoError(t, err)
		n2, err := GenerateNonce(Aes256Gcm)
		require.NoError(t, err)
		assert.NotEqual(t, n1.Bytes(), n2.Bytes())
	})
}

func TestNonceFromBytes(t *testing.T) {
	t.Run("matching size", func(t *testing.T) {
		b := make([]byte, 12)
		n, err := NonceFromBytes(b, Aes256Gcm)
		require.NoError(t, err)
		assert.Equal(t, b, n.Bytes())
	})

	t.Run("wrong size", func(t *testing.T) {
		_, err := NonceFromBytes(make([]byte, 12), XChaCha20Poly1305)
		assert.ErrorIs(t, err, ErrInvalidNonceSize)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := NonceFromBytes(make([]byte, 12), Algorithm("unknown"))
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})
}
