package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/apperr"
)

func TestHashPassword_SaltIsRandom(t *testing.T) {
	first, err := HashPassword("correct horse")
	require.NoError(t, err)
	second, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, digestSize)
}

func TestHashPassword_RejectsBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := HashPassword(in)
		assert.ErrorIs(t, err, ErrEmptyPassword)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	}
}

func TestVerifyPassword(t *testing.T) {
	digest, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	ok, err := VerifyPassword("s3cret-pass", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("s3cret-pasS", digest)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, CheckPasswordHash("s3cret-pass", digest))
	assert.False(t, CheckPasswordHash("other", digest))
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, digestSize-1))

	tests := []struct {
		name   string
		digest string
	}{
		{"not base64", "!!not-base64!!"},
		{"too short", short},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword("anything", tt.digest)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformedDigest)
			assert.False(t, CheckPasswordHash("anything", tt.digest))
		})
	}
}
