package memory

import (
	"context"
	"time"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type tokenRepository struct {
	store *Store
}

func cloneToken(t entity.Token) *entity.Token {
	if t.NewEmail != nil {
		email := *t.NewEmail
		t.NewEmail = &email
	}

	return &t
}

func (r *tokenRepository) Create(_ context.Context, token *entity.Token) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.byValue[token.Value]; ok {
		return errors.WithStack(repository.ErrTokenValueConflict)
	}
	if _, ok := r.store.accounts[token.AccountID]; !ok {
		return errors.WithStack(repository.ErrAccountNotFound)
	}

	r.store.tokens[token.ID] = *cloneToken(*token)
	r.store.byValue[token.Value] = token.ID

	return nil
}

func (r *tokenRepository) FindByValue(_ context.Context, value string, kind entity.TokenKind) (*entity.Token, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byValue[value]
	if !ok {
		return nil, errors.WithStack(repository.ErrTokenNotFound)
	}
	token := r.store.tokens[id]
	if token.Kind != kind {
		return nil, errors.WithStack(repository.ErrTokenNotFound)
	}

	return cloneToken(token), nil
}

func (r *tokenRepository) MarkUsed(_ context.Context, id uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[id]
	if !ok || !token.IsValidAt(now) {
		return errors.WithStack(repository.ErrTokenNotConsumable)
	}
	token.IsUsed = true
	r.store.tokens[id] = token

	return nil
}

func (r *tokenRepository) MarkAllUsed(_ context.Context, accountID uuid.UUID, kind entity.TokenKind) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, token := range r.store.tokens {
		if token.AccountID != accountID || token.Kind != kind || token.IsUsed {
			continue
		}
		token.IsUsed = true
		r.store.tokens[id] = token
		n++
	}

	return n, nil
}

func (r *tokenRepository) DeleteByAccountID(_ context.Context, accountID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, token := range r.store.tokens {
		if token.AccountID == accountID {
			delete(r.store.tokens, id)
			delete(r.store.byValue, token.Value)
		}
	}

	return nil
}

func (r *tokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, token := range r.store.tokens {
		if token.ExpiresAt.Before(before) {
			delete(r.store.tokens, id)
			delete(r.store.byValue, token.Value)
			n++
		}
	}

	return n, nil
}
