package memory

import (
	"context"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type accountRepository struct {
	store *Store
}

func cloneAccount(a entity.Account) *entity.Account {
	if a.PendingEmail != nil {
		pending := *a.PendingEmail
		a.PendingEmail = &pending
	}

	return &a
}

func (r *accountRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrAccountNotFound)
	}

	return cloneAccount(account), nil
}

// FindByIDForUpdate needs no row lock here: transactions already run one at a time.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return r.FindByID(ctx, id)
}

func (r *accountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if account, ok := r.findByEmailLocked(entity.NormalizeEmail(email)); ok {
		return cloneAccount(account), nil
	}

	return nil, errors.WithStack(repository.ErrAccountNotFound)
}

func (r *accountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.findByEmailLocked(entity.NormalizeEmail(email))

	return ok, nil
}

func (r *accountRepository) Create(_ context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.findByEmailLocked(account.Email); ok {
		return errors.WithStack(repository.ErrEmailTaken)
	}
	if _, ok := r.store.accounts[account.ID]; ok {
		return errors.Errorf("account %s already exists", account.ID)
	}

	r.store.accounts[account.ID] = *cloneAccount(*account)

	return nil
}

func (r *accountRepository) Update(_ context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.accounts[account.ID]
	if !ok {
		return errors.WithStack(repository.ErrAccountNotFound)
	}
	if other, taken := r.findByEmailLocked(account.Email); taken && other.ID != account.ID {
		return errors.WithStack(repository.ErrEmailTaken)
	}

	updated := *cloneAccount(*account)
	updated.CreatedAt = existing.CreatedAt
	r.store.accounts[account.ID] = updated

	return nil
}

// Delete removes the account together with its tokens and sessions.
func (r *accountRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[id]; !ok {
		return errors.WithStack(repository.ErrAccountNotFound)
	}
	delete(r.store.accounts, id)

	for tokenID, token := range r.store.tokens {
		if token.AccountID == id {
			delete(r.store.tokens, tokenID)
			delete(r.store.byValue, token.Value)
		}
	}
	for hash, session := range r.store.sessions {
		if session.AccountID == id {
			delete(r.store.sessions, hash)
		}
	}

	return nil
}

func (r *accountRepository) findByEmailLocked(email string) (entity.Account, bool) {
	for _, account := range r.store.accounts {
		if account.Email == email {
			return account, true
		}
	}

	return entity.Account{}, false
}
