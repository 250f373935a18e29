// Package memory is an in-process implementation of the repositories, used by
// the "memory" storage driver and by tests. Transactions are serialized and
// roll back by restoring a snapshot.
package memory

import (
	"context"
	"sync"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds every record. The zero value is not usable; call NewStore.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	accounts map[uuid.UUID]entity.Account
	tokens   map[uuid.UUID]entity.Token
	byValue  map[string]uuid.UUID
	sessions map[string]entity.RefreshToken
}

type snapshot struct {
	accounts map[uuid.UUID]entity.Account
	tokens   map[uuid.UUID]entity.Token
	byValue  map[string]uuid.UUID
	sessions map[string]entity.RefreshToken
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]entity.Account),
		tokens:   make(map[uuid.UUID]entity.Token),
		byValue:  make(map[string]uuid.UUID),
		sessions: make(map[string]entity.RefreshToken),
	}
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return snapshot{
		accounts: cloneMap(s.accounts),
		tokens:   cloneMap(s.tokens),
		byValue:  cloneMap(s.byValue),
		sessions: cloneMap(s.sessions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = snap.accounts
	s.tokens = snap.tokens
	s.byValue = snap.byValue
	s.sessions = snap.sessions
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

// AccountRepo returns an account repository over the store.
func (s *Store) AccountRepo() repository.AccountRepository {
	return &accountRepository{store: s}
}

// TokenRepo returns a token repository over the store.
func (s *Store) TokenRepo() repository.TokenRepository {
	return &tokenRepository{store: s}
}

// RefreshTokenRepo returns a refresh token repository over the store.
func (s *Store) RefreshTokenRepo() repository.RefreshTokenRepository {
	return &refreshTokenRepository{store: s}
}

type transactionManager struct {
	store *Store
}

// NewTransactionManager returns a TransactionManager that runs one transaction at a time.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn with exclusive access to the store and restores the previous
// state if fn fails or panics.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()

	defer func() {
		if r := recover(); r != nil {
			tm.store.restore(snap)
			panic(r)
		}
	}()

	if err := fn(tm.store); err != nil {
		tm.store.restore(snap)

		return err
	}

	return nil
}
