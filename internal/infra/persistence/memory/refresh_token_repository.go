package memory

import (
	"context"
	"time"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type refreshTokenRepository struct {
	store *Store
}

func (r *refreshTokenRepository) Create(_ context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[token.AccountID]; !ok {
		return errors.WithStack(repository.ErrAccountNotFound)
	}
	if _, ok := r.store.sessions[token.TokenHash]; ok {
		return errors.New("refresh token already exists")
	}
	r.store.sessions[token.TokenHash] = *token

	return nil
}

func (r *refreshTokenRepository) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	session, ok := r.store.sessions[tokenHash]
	if !ok {
		return nil, errors.WithStack(repository.ErrRefreshTokenNotFound)
	}

	return &session, nil
}

func (r *refreshTokenRepository) DeleteByHash(_ context.Context, tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sessions[tokenHash]; !ok {
		return errors.WithStack(repository.ErrRefreshTokenNotFound)
	}
	delete(r.store.sessions, tokenHash)

	return nil
}

func (r *refreshTokenRepository) DeleteByAccountID(_ context.Context, accountID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for hash, session := range r.store.sessions {
		if session.AccountID == accountID {
			delete(r.store.sessions, hash)
		}
	}

	return nil
}

func (r *refreshTokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for hash, session := range r.store.sessions {
		if session.ExpiresAt.Before(before) {
			delete(r.store.sessions, hash)
			n++
		}
	}

	return n, nil
}
