package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

var testHashingParams = cryptoDomain.Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}

func TestNewKeyslot_RoundTrip(t *testing.T) {
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.XChaCha20Poly1305, cryptoDomain.Aes256Gcm} {
		t.Run(string(alg), func(t *testing.T) {
			slot, err := NewKeyslot(context.Background(), alg, cryptoDomain.Argon2id, testHashingParams, []byte("correct horse"), masterKey)
			require.NoError(t, err)

			recovered, err := slot.Decrypt(context.Background(), testHashingParams, []byte("correct horse"))
			require.NoError(t, err)
			assert.True(t, masterKey.Equal(recovered))
		})
	}
}

func TestKeyslot_Decrypt_WrongPassword(t *testing.T) {
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	slot, err := NewKeyslot(context.Background(), cryptoDomain.XChaCha20Poly1305, cryptoDomain.Argon2id, testHashingParams, []byte("correct horse"), masterKey)
	require.NoError(t, err)

	_, err = slot.Decrypt(context.Background(), testHashingParams, []byte("wrong password"))
	assert.ErrorIs(t, err, cryptoDomain.ErrAuthFailed)
}

func TestNewKeyslot_UnsupportedAlgorithm(t *testing.T) {
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	_, err = NewKeyslot(context.Background(), cryptoDomain.Algorithm("unknown"), cryptoDomain.Argon2id, testHashingParams, []byte("pw"), masterKey)
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}

func TestNewKeyslot_EachSlotHasIndependentSaltAndNonce(t *testing.T) {
	masterKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	slot1, err := NewKeyslot(context.Background(), cryptoDomain.XChaCha20Poly1305, cryptoDomain.Argon2id, testHashingParams, []byte("pw"), masterKey)
	require.NoError(t, err)

	slot2, err := NewKeyslot(context.Background(), cryptoDomain.XChaCha20Poly1305, cryptoDomain.Argon2id, testHashingParams, []byte("pw"), masterKey)
	require.NoError(t, err)

	assert.NotEqual(t, slot1.Salt.Bytes(), slot2.Salt.Bytes())
	assert.NotEqual(t, slot1.Nonce.Bytes(), slot2.Nonce.Bytes())
	assert.NotEqual(t, slot1.EncryptedMasterKey.Bytes(), slot2.EncryptedMasterKey.Bytes())
}
