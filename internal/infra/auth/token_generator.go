package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"

	"accounts/internal/domain/service"
)

// tokenBytes is the entropy of every single-use token value.
const tokenBytes = 32

// randomTokenGenerator draws token values from crypto/rand.
type randomTokenGenerator struct{}

// NewTokenGenerator returns a generator of URL-safe values carrying 256 bits of entropy.
func NewTokenGenerator() service.TokenGenerator {
	return randomTokenGenerator{}
}

// Generate returns a fresh unpadded base64url value.
func (randomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
