package usecase

import (
	"context"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// ConfirmPasswordResetInput carries a reset token and the replacement password.
type ConfirmPasswordResetInput struct {
	Token       string
	NewPassword string
}

// ChangePasswordInput defines the data required for an authenticated password change.
type ChangePasswordInput struct {
	AccountID   uuid.UUID
	OldPassword string
	NewPassword string
}

// RequestEmailChangeInput defines the data required to start an email change.
type RequestEmailChangeInput struct {
	AccountID uuid.UUID
	NewEmail  string
	Password  string
}

// DeleteAccountInput defines the data required to delete an account.
type DeleteAccountInput struct {
	AccountID uuid.UUID
	Password  string
}

// DeactivateAccountInput defines the data required to deactivate an account.
type DeactivateAccountInput struct {
	AccountID uuid.UUID
	Password  string
}

// --- Output DTOs ---

// RegisterOutput returns the registered account. Resent is true when the address
// already belonged to an unverified account and only a new verification was sent.
type RegisterOutput struct {
	Account *entity.Account
	Resent  bool
}

// AccountUsecase is the workflow orchestrator for the token-gated account flows.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) (*entity.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, input *ConfirmPasswordResetInput) error
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
	RequestEmailChange(ctx context.Context, input *RequestEmailChangeInput) error
	ConfirmEmailChange(ctx context.Context, token string) (*entity.Account, error)
	CancelEmailChange(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, input *DeleteAccountInput) error
	DeactivateAccount(ctx context.Context, input *DeactivateAccountInput) error
}
