package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedAccount(t *testing.T, store *Store, email string) *entity.Account {
	t.Helper()

	account := entity.NewAccount(email, "hash", "Ann", "Lee", "", testNow)
	require.NoError(t, store.AccountRepo().Create(context.Background(), account))

	return account
}

// countValid counts the tokens of kind still redeemable at testNow.
func countValid(store *Store, accountID uuid.UUID, kind entity.TokenKind) int {
	store.mu.RLock()
	defer store.mu.RUnlock()

	n := 0
	for _, token := range store.tokens {
		if token.AccountID == accountID && token.Kind == kind && token.IsValidAt(testNow) {
			n++
		}
	}

	return n
}

func seedToken(t *testing.T, store *Store, accountID uuid.UUID, kind entity.TokenKind, value string) *entity.Token {
	t.Helper()

	policy, err := kind.Policy()
	require.NoError(t, err)

	var newEmail *string
	if policy.RequiresNewEmail {
		email := "next@example.com"
		newEmail = &email
	}
	token, err := entity.NewToken(accountID, kind, value, newEmail, testNow, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.TokenRepo().Create(context.Background(), token))

	return token
}

func TestAccountRepository_EmailUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	first := seedAccount(t, store, "a@example.com")

	dup := entity.NewAccount("A@Example.com", "hash", "", "", "", testNow)
	err := store.AccountRepo().Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	other := seedAccount(t, store, "b@example.com")
	other.Email = first.Email
	err = store.AccountRepo().Update(ctx, other)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	found, err := store.AccountRepo().FindByEmail(ctx, " A@EXAMPLE.COM ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	exists, err := store.AccountRepo().ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")

	found, err := store.AccountRepo().FindByID(ctx, account.ID)
	require.NoError(t, err)
	found.FirstName = "Changed"

	again, err := store.AccountRepo().FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.FirstName)
}

func TestAccountRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	seedToken(t, store, account.ID, entity.TokenKindVerifyEmail, "v1")
	require.NoError(t, store.RefreshTokenRepo().Create(ctx, &entity.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: "h1",
		ExpiresAt: testNow.Add(time.Hour),
	}))

	require.NoError(t, store.AccountRepo().Delete(ctx, account.ID))

	_, err := store.TokenRepo().FindByValue(ctx, "v1", entity.TokenKindVerifyEmail)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
	_, err = store.RefreshTokenRepo().FindByHash(ctx, "h1")
	assert.ErrorIs(t, err, repository.ErrRefreshTokenNotFound)

	err = store.AccountRepo().Delete(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestTokenRepository_FindByValueScopedToKind(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	seedToken(t, store, account.ID, entity.TokenKindResetPassword, "reset-1")

	_, err := store.TokenRepo().FindByValue(ctx, "reset-1", entity.TokenKindVerifyEmail)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	found, err := store.TokenRepo().FindByValue(ctx, "reset-1", entity.TokenKindResetPassword)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.AccountID)
}

func TestTokenRepository_ValueConflict(t *testing.T) {
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	seedToken(t, store, account.ID, entity.TokenKindVerifyEmail, "same")

	token, err := entity.NewToken(account.ID, entity.TokenKindResetPassword, "same", nil, testNow, 0)
	require.NoError(t, err)
	err = store.TokenRepo().Create(context.Background(), token)
	assert.ErrorIs(t, err, repository.ErrTokenValueConflict)
}

func TestTokenRepository_MarkUsed(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	token := seedToken(t, store, account.ID, entity.TokenKindVerifyEmail, "v1")

	err := store.TokenRepo().MarkUsed(ctx, token.ID, token.ExpiresAt)
	assert.ErrorIs(t, err, repository.ErrTokenNotConsumable, "expired at the boundary")

	require.NoError(t, store.TokenRepo().MarkUsed(ctx, token.ID, testNow))

	err = store.TokenRepo().MarkUsed(ctx, token.ID, testNow)
	assert.ErrorIs(t, err, repository.ErrTokenNotConsumable)
}

func TestTokenRepository_ConcurrentMarkUsed(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	token := seedToken(t, store, account.ID, entity.TokenKindResetPassword, "r1")

	const workers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.TokenRepo().MarkUsed(ctx, token.ID, testNow); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestTokenRepository_MarkAllUsedAndCount(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	seedToken(t, store, account.ID, entity.TokenKindChangeEmail, "c1")
	seedToken(t, store, account.ID, entity.TokenKindChangeEmail, "c2")
	seedToken(t, store, account.ID, entity.TokenKindVerifyEmail, "v1")

	assert.Equal(t, 2, countValid(store, account.ID, entity.TokenKindChangeEmail))

	n, err := store.TokenRepo().MarkAllUsed(ctx, account.ID, entity.TokenKindChangeEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Zero(t, countValid(store, account.ID, entity.TokenKindChangeEmail))
	assert.Equal(t, 1, countValid(store, account.ID, entity.TokenKindVerifyEmail))
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	seedToken(t, store, account.ID, entity.TokenKindVerifyEmail, "v1")

	n, err := store.TokenRepo().DeleteExpired(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.TokenRepo().DeleteExpired(ctx, testNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.TokenRepo().FindByValue(ctx, "v1", entity.TokenKindVerifyEmail)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	account := seedAccount(t, store, "a@example.com")
	tm := NewTransactionManager(store)
	boom := errors.New("boom")

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		account.FirstName = "Changed"
		if err := repos.AccountRepo().Update(ctx, account); err != nil {
			return err
		}
		seedToken(t, store, account.ID, entity.TokenKindVerifyEmail, "v1")

		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := store.AccountRepo().FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", found.FirstName)
	_, err = store.TokenRepo().FindByValue(ctx, "v1", entity.TokenKindVerifyEmail)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)

	assert.Panics(t, func() {
		_ = tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
			_ = repos.AccountRepo().Create(ctx, entity.NewAccount("p@example.com", "hash", "", "", "", testNow))
			panic("boom")
		})
	})

	exists, err := store.AccountRepo().ExistsByEmail(ctx, "p@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionManager_Commits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		return repos.AccountRepo().Create(ctx, entity.NewAccount("c@example.com", "hash", "", "", "", testNow))
	})
	require.NoError(t, err)

	exists, err := store.AccountRepo().ExistsByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
