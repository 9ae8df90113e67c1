package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	s1, err := GenerateSalt()
	require.NoError(t, err)
	s2, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, s1.Bytes(), s2.Bytes())
	assert.Len(t, s1.Bytes(), SaltSize)
}

func TestSaltFromBytes_InvalidSize(t *testing.T) {
	_, err := SaltFromBytes(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidSaltSize)
}

func TestGenerateContentSalt(t *testing.T) {
	c1, err := GenerateContentSalt()
	require.NoError(t, err)
	c2, err := GenerateContentSalt()
	require.NoError(t, err)
	assert.NotEqual(t, c1.Bytes(), c2.Bytes())
}

func TestContentSaltFromBytes_InvalidSize(t *testing.T) {
	_, err := ContentSaltFromBytes(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidSaltSize)
}

func TestGenerateAad(t *testing.T) {
	a1, err := GenerateAad()
	require.NoError(t, err)
	a2, err := GenerateAad()
	require.NoError(t, err)
	assert.NotEqual(t, a1.Bytes(), a2.Bytes())
	assert.Len(t, a1.Bytes(), AadSize)
}

func TestAadFromBytes_InvalidSize(t *testing.T) {
	_, err := AadFromBytes(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidAadSize)
}
