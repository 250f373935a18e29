package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_UsesKindDefaultTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	token, err := NewToken(uuid.New(), TokenKindVerifyEmail, "value", nil, now, 0)

	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTokenTTL), token.ExpiresAt)
	assert.False(t, token.IsUsed)
	assert.Nil(t, token.NewEmail)
}

func TestNewToken_PayloadFollowsKindPolicy(t *testing.T) {
	now := time.Now()
	email := "New@x.com"

	_, err := NewToken(uuid.New(), TokenKindChangeEmail, "v", nil, now, time.Hour)
	assert.ErrorIs(t, err, ErrNewEmailRequired)

	_, err = NewToken(uuid.New(), TokenKindResetPassword, "v", &email, now, time.Hour)
	assert.ErrorIs(t, err, ErrNewEmailNotAllowed)

	token, err := NewToken(uuid.New(), TokenKindChangeEmail, "v", &email, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", *token.NewEmail)

	_, err = NewToken(uuid.New(), TokenKind("magic_link"), "v", nil, now, time.Hour)
	assert.ErrorIs(t, err, ErrUnknownTokenKind)
}

func TestToken_IsValidAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := NewToken(uuid.New(), TokenKindResetPassword, "v", nil, now, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		at    time.Time
		used  bool
		valid bool
	}{
		{name: "fresh", at: now, valid: true},
		{name: "just before expiry", at: now.Add(time.Hour - time.Nanosecond), valid: true},
		{name: "at expiry", at: now.Add(time.Hour), valid: false},
		{name: "after expiry", at: now.Add(2 * time.Hour), valid: false},
		{name: "used", at: now, used: true, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := *token
			tok.IsUsed = tt.used
			assert.Equal(t, tt.valid, tok.IsValidAt(tt.at))
		})
	}
}
