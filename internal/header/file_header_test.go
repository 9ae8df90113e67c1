package header

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	headerDomain "github.com/allisson/jobcrypt/internal/header/domain"
)

var testHashingParams = cryptoDomain.Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}

// TestScenarioS1 mirrors the encrypt/decrypt-with-password scenario: add a
// keyslot and a metadata object, serialize/deserialize, then recover both
// via the correct password and reject the wrong one.
func TestScenarioS1(t *testing.T) {
	ctx := context.Background()
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	h, err := NewFileHeader(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	require.NoError(t, h.AddKeyslot(ctx, testHashingParams, []byte("correct horse"), masterKey))
	require.NoError(t, h.AddObject(ctx, headerDomain.Metadata, masterKey, []byte("hello")))

	encoded, err := h.Serialize()
	require.NoError(t, err)

	decoded, err := Deserialize(encoded)
	require.NoError(t, err)

	recovered, err := decoded.DecryptMasterKeyWithPassword(ctx, testHashingParams, []byte("correct horse"))
	require.NoError(t, err)
	assert.True(t, masterKey.Equal(recovered))

	plaintext, err := decoded.DecryptObject(ctx, 0, recovered)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), plaintext)

	_, err = decoded.DecryptMasterKeyWithPassword(ctx, testHashingParams, []byte("wrong"))
	assert.ErrorIs(t, err, headerDomain.ErrIncorrectPassword)
}

// TestScenarioS2 mirrors two keyslots wrapping the same master key: the
// second password unlocks it just as well as the first.
func TestScenarioS2(t *testing.T) {
	ctx := context.Background()
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	h, err := NewFileHeader(cryptoDomain.Aes256Gcm)
	require.NoError(t, err)

	require.NoError(t, h.AddKeyslot(ctx, testHashingParams, []byte("password-a"), masterKey))
	require.NoError(t, h.AddKeyslot(ctx, testHashingParams, []byte("password-b"), masterKey))

	recovered, err := h.DecryptMasterKeyWithPassword(ctx, testHashingParams, []byte("password-b"))
	require.NoError(t, err)
	assert.True(t, masterKey.Equal(recovered))
}

// TestScenarioS3 mirrors bounded object capacity: a third AddObject call is
// rejected and leaves the header's serialized bytes unchanged.
func TestScenarioS3(t *testing.T) {
	ctx := context.Background()
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	h, err := NewFileHeader(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	require.NoError(t, h.AddObject(ctx, headerDomain.Metadata, masterKey, []byte("one")))
	require.NoError(t, h.AddObject(ctx, headerDomain.PreviewMedia, masterKey, []byte("two")))

	before, err := h.Serialize()
	require.NoError(t, err)

	err = h.AddObject(ctx, headerDomain.Metadata, masterKey, []byte("three"))
	assert.ErrorIs(t, err, headerDomain.ErrTooManyObjects)

	after, err := h.Serialize()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))
}

func TestFileHeader_AddKeyslot_TooMany(t *testing.T) {
	ctx := context.Background()
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	h, err := NewFileHeader(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	require.NoError(t, h.AddKeyslot(ctx, testHashingParams, []byte("a"), masterKey))
	require.NoError(t, h.AddKeyslot(ctx, testHashingParams, []byte("b"), masterKey))

	err = h.AddKeyslot(ctx, testHashingParams, []byte("c"), masterKey)
	assert.ErrorIs(t, err, headerDomain.ErrTooManyKeyslots)
}

func TestFileHeader_DecryptObject_IndexOutOfRange(t *testing.T) {
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	h, err := NewFileHeader(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	_, err = h.DecryptObject(context.Background(), 0, masterKey)
	assert.ErrorIs(t, err, headerDomain.ErrIndexOutOfRange)
}

func TestFileHeader_DecryptMasterKeyWithPassword_NoKeyslots(t *testing.T) {
	h, err := NewFileHeader(cryptoDomain.XChaCha20Poly1305)
	require.NoError(t, err)

	_, err = h.DecryptMasterKeyWithPassword(context.Background(), testHashingParams, []byte("anything"))
	assert.ErrorIs(t, err, headerDomain.ErrNoKeyslots)
}

func TestDeserialize_RejectsBadMagic(t *testing.T) {
	_, err := Deserialize([]byte("NOTHEADERBYTES"))
	assert.ErrorIs(t, err, headerDomain.ErrUnsupportedVersion)
}

func TestDeserialize_RejectsUnknownVersion(t *testing.T) {
	b := append([]byte{'S', 'D', 'F', 'H', 0xFF}, make([]byte, 10)...)
	_, err := Deserialize(b)
	assert.ErrorIs(t, err, headerDomain.ErrUnsupportedVersion)
}

func TestNewFileHeader_UnsupportedAlgorithm(t *testing.T) {
	_, err := NewFileHeader(cryptoDomain.Algorithm("rot13"))
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}

func TestFileHeader_Serialize_RoundTripsAllFields(t *testing.T) {
	ctx := context.Background()
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	h, err := NewFileHeader(cryptoDomain.Aes256Gcm)
	require.NoError(t, err)
	require.NoError(t, h.AddKeyslot(ctx, testHashingParams, []byte("pw"), masterKey))
	require.NoError(t, h.AddObject(ctx, headerDomain.PreviewMedia, masterKey, []byte("thumb-bytes")))

	encoded, err := h.Serialize()
	require.NoError(t, err)

	decoded, err := Deserialize(encoded)
	require.NoError(t, err)

	assert.Equal(t, h.Version, decoded.Version)
	assert.Equal(t, h.Algorithm, decoded.Algorithm)
	assert.Equal(t, h.Aad.Bytes(), decoded.Aad.Bytes())
	assert.Equal(t, h.Nonce.Bytes(), decoded.Nonce.Bytes())
	assert.Len(t, decoded.Keyslots, 1)
	assert.Len(t, decoded.Objects, 1)
}
