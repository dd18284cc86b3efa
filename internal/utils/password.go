package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"noticeboard/internal/apperr"
)

// Digest layout: base64(salt || key). The iteration count is not encoded,
// so changing it invalidates every stored digest.
const (
	saltSize         = 16
	keySize          = 32
	pbkdf2Iterations = 100_000
	digestSize       = saltSize + keySize
)

var (
	ErrEmptyPassword   = apperr.Validation("password must not be empty")
	ErrMalformedDigest = apperr.Validation("password digest is malformed")
)

// HashPassword derives a salted PBKDF2-SHA256 digest for password.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", apperr.Internal("failed to generate salt", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keySize, sha256.New)

	out := make([]byte, 0, digestSize)
	out = append(out, salt...)
	out = append(out, key...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// VerifyPassword reports whether password matches digest.
func VerifyPassword(password, digest string) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(digest)
	if err != nil || len(raw) < digestSize {
		return false, ErrMalformedDigest
	}

	salt := raw[:saltSize]
	expected := raw[saltSize:digestSize]
	actual := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keySize, sha256.New)

	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

// CheckPasswordHash is VerifyPassword with any error treated as a mismatch.
func CheckPasswordHash(password, digest string) bool {
	ok, err := VerifyPassword(password, digest)
	return err == nil && ok
}
