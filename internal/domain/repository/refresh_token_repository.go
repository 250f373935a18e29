package repository

import (
	"context"
	"errors"
	"time"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository stores the sessions handed out by the session issuer.
// Deleting a record revokes the session.
type RefreshTokenRepository interface {
	// Create persists a new refresh token, representing a session.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a refresh token record by its securely stored hash.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteByHash revokes a single session. Returns ErrRefreshTokenNotFound if nothing matched.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByAccountID revokes every session of an account.
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpired removes sessions that expired before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
