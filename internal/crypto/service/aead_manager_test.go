package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

func mustKey(t *testing.T) cryptoDomain.Key {
	t.Helper()
	key, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)
	return key
}

func TestNewAEADManager(t *testing.T) {
	manager := NewAEADManager()
	assert.NotNil(t, manager)
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := mustKey(t)

	t.Run("create AES-256-GCM cipher", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.Aes256Gcm)
		require.NoError(t, err)
		assert.NotNil(t, c)

		_, ok := c.(*AESGCMCipher)
		assert.True(t, ok, "cipher should be of type *AESGCMCipher")
	})

	t.Run("create XChaCha20-Poly1305 cipher", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.XChaCha20Poly1305)
		require.NoError(t, err)
		assert.NotNil(t, c)

		_, ok := c.(*XChaCha20Poly1305Cipher)
		assert.True(t, ok, "cipher should be of type *XChaCha20Poly1305Cipher")
	})

	t.Run("create cipher with unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(key, cryptoDomain.Algorithm("unsupported"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("create cipher with empty algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(key, cryptoDomain.Algorithm(""))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("algorithm constants are case sensitive", func(t *testing.T) {
		_, err := manager.CreateCipher(key, cryptoDomain.Algorithm("AES-256-GCM"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}

func TestAEADManagerService_CreateCipher_Functional(t *testing.T) {
	manager := NewAEADManager()
	key := mustKey(t)

	t.Run("AES-256-GCM cipher can encrypt and decrypt", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.Aes256Gcm)
		require.NoError(t, err)

		nonce, err := cryptoDomain.GenerateNonce(cryptoDomain.Aes256Gcm)
		require.NoError(t, err)

		plaintext := []byte("secret message")
		aad := []byte("additional data")

		ciphertext, err := c.Encrypt(plaintext, nonce, aad)
		require.NoError(t, err)
		assert.NotNil(t, ciphertext)

		decrypted, err := c.Decrypt(ciphertext, nonce, aad)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("XChaCha20-Poly1305 cipher can encrypt and decrypt", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.XChaCha20Poly1305)
		require.NoError(t, err)

		nonce, err := cryptoDomain.GenerateNonce(cryptoDomain.XChaCha20Poly1305)
		require.NoError(t, err)

		plaintext := []byte("secret message")
		aad := []byte("additional data")

		ciphertext, err := c.Encrypt(plaintext, nonce, aad)
		require.NoError(t, err)
		assert.NotNil(t, ciphertext)

		decrypted, err := c.Decrypt(ciphertext, nonce, aad)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("tampered ciphertext fails authentication", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.Aes256Gcm)
		require.NoError(t, err)

		nonce, err := cryptoDomain.GenerateNonce(cryptoDomain.Aes256Gcm)
		require.NoError(t, err)

		ciphertext, err := c.Encrypt([]byte("secret message"), nonce, nil)
		require.NoError(t, err)

		ciphertext[0] ^= 0xFF
		_, err = c.Decrypt(ciphertext, nonce, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthFailed)
	})

	t.Run("wrong nonce size is rejected before calling the cipher", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.Aes256Gcm)
		require.NoError(t, err)

		badNonce, err := cryptoDomain.NonceFromBytes(make([]byte, 24), cryptoDomain.XChaCha20Poly1305)
		require.NoError(t, err)

		_, err = c.Encrypt([]byte("data"), badNonce, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidNonceSize)
	})
}

func TestEncryptDecrypt(t *testing.T) {
	key := mustKey(t)
	nonce, err := cryptoDomain.GenerateNonce(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	plaintext := []byte("job checkpoint payload")
	aad := []byte("job-fingerprint")

	ciphertext, err := Encrypt(key, nonce, cryptoDomain.XChaCha20Poly1305, plaintext, aad)
	require.NoError(t, err)

	decrypted, err := Decrypt(key, nonce, cryptoDomain.XChaCha20Poly1305, ciphertext, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}
