package handler

import (
	"time"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	PendingEmail    *string   `json:"pending_email,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone,omitempty"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newAccountResponse(account *entity.Account) *AccountResponse {
	if account == nil {
		return nil
	}

	return &AccountResponse{
		ID:              account.ID,
		Email:           account.Email,
		PendingEmail:    account.PendingEmail,
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		Phone:           account.Phone,
		IsEmailVerified: account.IsEmailVerified,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.UpdatedAt,
	}
}

// TokenRequest carries a single-use token taken from an emailed link.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// EmailRequest names an address for the anti-enumeration endpoints.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}
