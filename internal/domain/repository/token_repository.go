package repository

import (
	"context"
	"errors"
	"time"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrTokenNotFound is returned when no token matches both value and kind.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenValueConflict is returned when a newly generated value already exists.
	ErrTokenValueConflict = errors.New("token value already exists")
	// ErrTokenNotConsumable is returned when the conditional consume matched no row,
	// because the token was used or expired in the meantime.
	ErrTokenNotConsumable = errors.New("token is no longer consumable")
)

// TokenRepository stores single-use tokens. Every mutation is atomic per row.
type TokenRepository interface {
	// Create persists a new token. Returns ErrTokenValueConflict if the value is taken.
	Create(ctx context.Context, token *entity.Token) error

	// FindByValue retrieves a token by value, scoped to a kind.
	FindByValue(ctx context.Context, value string, kind entity.TokenKind) (*entity.Token, error)

	// MarkUsed flips is_used on a token that is still unused and unexpired at now,
	// as a single check-and-set. Returns ErrTokenNotConsumable if the condition failed.
	MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) error

	// MarkAllUsed marks every unused token of kind for the account as used and
	// returns how many rows changed.
	MarkAllUsed(ctx context.Context, accountID uuid.UUID, kind entity.TokenKind) (int64, error)

	// DeleteByAccountID removes every token owned by the account.
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpired removes tokens that expired before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
