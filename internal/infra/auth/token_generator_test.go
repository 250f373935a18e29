package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGenerator_ProducesURLSafeUniqueValues(t *testing.T) {
	gen := NewTokenGenerator()
	seen := make(map[string]struct{})

	for range 200 {
		value, err := gen.Generate()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(value)
		require.NoError(t, err)
		assert.Len(t, raw, tokenBytes)
		assert.NotContains(t, value, "=")
		assert.NotContains(t, value, "+")
		assert.NotContains(t, value, "/")

		_, dup := seen[value]
		assert.False(t, dup)
		seen[value] = struct{}{}
	}
}
