// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"

	"github.com/google/uuid"
)

// TokenLifecycle is the single-use token engine shared by every account flow.
// The token store is passed per call so the engine takes part in the caller's transaction.
type TokenLifecycle interface {
	// Issue creates a fresh token of kind for the account. newEmail is required for
	// change_email and rejected for the other kinds.
	Issue(ctx context.Context, store repository.TokenRepository, accountID uuid.UUID, kind entity.TokenKind, newEmail *string) (*entity.Token, error)

	// Validate returns the token when it exists for kind, is unused and unexpired.
	// Every failure satisfies errors.Is(err, domainerrors.ErrInvalidToken).
	Validate(ctx context.Context, store repository.TokenRepository, value string, kind entity.TokenKind) (*entity.Token, error)

	// Consume marks a validated token used. It fails with an invalid token error if
	// another caller consumed it first or it expired meanwhile.
	Consume(ctx context.Context, store repository.TokenRepository, token *entity.Token) error

	// Redeem looks the token up, runs beforeConsume, then validates and consumes it.
	// beforeConsume lets the caller lock the owning account before any token row is
	// written, so every flow takes the account lock first. It may be nil.
	Redeem(ctx context.Context, store repository.TokenRepository, value string, kind entity.TokenKind, beforeConsume func(token *entity.Token) error) (*entity.Token, error)

	// Lookup finds a token by value and kind regardless of validity.
	Lookup(ctx context.Context, store repository.TokenRepository, value string, kind entity.TokenKind) (*entity.Token, error)

	// Supersede marks every outstanding token of kind for the account as used.
	Supersede(ctx context.Context, store repository.TokenRepository, accountID uuid.UUID, kind entity.TokenKind) (int64, error)
}
