package usecase

import (
	"context"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string
	Password string
}

// SessionOutput returns the credentials of an established session.
type SessionOutput struct {
	AccessToken  string
	RefreshToken string
	Account      *entity.Account
}

// SessionUsecase defines the interface for session management operations.
type SessionUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*SessionOutput, error)
	Refresh(ctx context.Context, refreshToken string) (*SessionOutput, error)
	Logout(ctx context.Context, accountID uuid.UUID, refreshToken string) error
	LogoutAll(ctx context.Context, accountID uuid.UUID) error
}
