package entity

import (
	"testing"
	"time"

	domainerrors "accounts/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount_StartsUnverifiedWithoutPendingChange(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	account := NewAccount("  A@X.com ", "hash", " Ann ", "Bee", "", now)

	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, "Ann", account.FirstName)
	assert.Equal(t, StateUnverified, account.VerificationState())
	assert.False(t, account.HasPendingEmailChange())
	assert.True(t, account.IsActive)
	assert.Equal(t, now, account.CreatedAt)
}

func TestAccount_EmailChangeAxisIsIndependentOfVerification(t *testing.T) {
	now := time.Now()
	account := NewAccount("a@x.com", "hash", "A", "B", "", now)

	require.NoError(t, account.BeginEmailChange("New@X.com", now))
	assert.Equal(t, StateUnverified, account.VerificationState())
	require.True(t, account.HasPendingEmailChange())
	assert.Equal(t, "new@x.com", *account.PendingEmail)

	account.MarkEmailVerified(now)
	assert.Equal(t, StateVerified, account.VerificationState())
	assert.True(t, account.HasPendingEmailChange())

	account.CommitEmailChange("new@x.com", now)
	assert.Equal(t, "new@x.com", account.Email)
	assert.False(t, account.HasPendingEmailChange())
}

func TestAccount_BeginEmailChange_SameAddressIsNoOp(t *testing.T) {
	account := NewAccount("a@x.com", "hash", "A", "B", "", time.Now())

	err := account.BeginEmailChange(" A@x.COM", time.Now())

	assert.ErrorIs(t, err, domainerrors.ErrNoOpChange)
	assert.False(t, account.HasPendingEmailChange())
}

func TestAccount_ClearPendingEmail(t *testing.T) {
	account := NewAccount("a@x.com", "hash", "A", "B", "", time.Now())
	require.NoError(t, account.BeginEmailChange("b@x.com", time.Now()))

	account.ClearPendingEmail(time.Now())

	assert.Nil(t, account.PendingEmail)
	assert.Equal(t, "a@x.com", account.Email)
}

func TestAccount_UpdateProfile_OnlyTouchesProvidedFields(t *testing.T) {
	account := NewAccount("a@x.com", "hash", "Ann", "Bee", "+886912345678", time.Now())
	last := "Cee"

	account.UpdateProfile(nil, &last, nil, time.Now())

	assert.Equal(t, "Ann", account.FirstName)
	assert.Equal(t, "Cee", account.LastName)
	assert.Equal(t, "+886912345678", account.Phone)
	assert.Equal(t, "Ann Cee", account.DisplayName())
}
