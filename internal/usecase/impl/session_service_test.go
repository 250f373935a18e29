package impl

import (
	"context"
	"sync/atomic"
	"testing"

	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Login(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account, _ := h.register(t, "a@x.com", strongPassword)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "unknown email", email: "b@x.com", password: strongPassword, wantErr: domainerrors.ErrInvalidCredentials},
		{name: "wrong password", email: "a@x.com", password: "nope", wantErr: domainerrors.ErrInvalidCredentials},
		{name: "success with unnormalized email", email: " A@X.COM ", password: strongPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, out.AccessToken)
			assert.NotEmpty(t, out.RefreshToken)
			assert.Equal(t, account.ID, out.Account.ID)
		})
	}
}

// countingHasher counts how often a login spends hashing work.
type countingHasher struct {
	service.PasswordHasher

	checks  atomic.Int32
	unknown atomic.Int32
}

func (c *countingHasher) Check(password, hash string) bool {
	c.checks.Add(1)

	return c.PasswordHasher.Check(password, hash)
}

func (c *countingHasher) CheckUnknown(password string) {
	c.unknown.Add(1)
	c.PasswordHasher.CheckUnknown(password)
}

func TestSessionService_LoginHashesForUnknownEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com", strongPassword)

	hasher := &countingHasher{PasswordHasher: h.hasher}
	sessions := NewSessionService(SessionServiceParams{
		TxManager: h.txManager,
		Issuer:    h.issuer(t),
		Hasher:    hasher,
		Clock:     h.clock,
		Logger:    newDiscardLogger(),
	})

	_, err := sessions.Login(ctx, &usecase.LoginInput{Email: "nobody@x.com", Password: strongPassword})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, int32(1), hasher.unknown.Load())

	_, err = sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, int32(1), hasher.checks.Load())
	assert.Equal(t, int32(1), hasher.unknown.Load())
}

func TestSessionService_LoginRejectsInactiveAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account, _ := h.register(t, "a@x.com", strongPassword)

	stored := h.reload(t, account.ID)
	stored.Deactivate(h.clock.Now())
	require.NoError(t, h.store.AccountRepo().Update(ctx, stored))

	_, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	assert.ErrorIs(t, err, domainerrors.ErrAccountInactive)
}

func TestSessionService_RefreshRotates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com", strongPassword)

	login, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)

	rotated, err := h.sessions.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = h.sessions.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)

	_, err = h.sessions.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestSessionService_RefreshRejectsAccessToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com", strongPassword)

	login, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)

	_, err = h.sessions.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestSessionService_Logout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com", strongPassword)

	login, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)

	stranger := uuid.New()
	err = h.sessions.Logout(ctx, stranger, login.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)

	require.NoError(t, h.sessions.Logout(ctx, login.Account.ID, login.RefreshToken))

	err = h.sessions.Logout(ctx, login.Account.ID, login.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)

	_, err = h.sessions.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestSessionService_LogoutAll(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account, _ := h.register(t, "a@x.com", strongPassword)

	first, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)
	second, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)

	require.NoError(t, h.sessions.LogoutAll(ctx, account.ID))

	for _, refresh := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := h.sessions.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	}
}
