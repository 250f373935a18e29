package impl

import (
	"context"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"
	"accounts/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceService_PurgeExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, value := h.register(t, "a@x.com", strongPassword)

	_, err := h.sessions.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)

	purger := NewMaintenanceService(h.txManager, h.clock, newDiscardLogger())

	result, err := purger.PurgeExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, result.Tokens)
	assert.Zero(t, result.Sessions)

	h.clock.Advance(8 * 24 * time.Hour)

	result, err = purger.PurgeExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Tokens)
	assert.Equal(t, int64(1), result.Sessions)

	_, err = h.store.TokenRepo().FindByValue(ctx, value, entity.TokenKindVerifyEmail)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}
