// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when an insert or update collides with another account's email.
	ErrEmailTaken = errors.New("email already taken")
)

// AccountRepository defines the standard operations for account persistence.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByIDForUpdate retrieves an account and locks its row until the surrounding
	// transaction ends. Email and password mutations go through this lookup.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its normalized email address.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// ExistsByEmail reports whether any account holds the address.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create persists a new account. Returns ErrEmailTaken on a duplicate address.
	Create(ctx context.Context, account *entity.Account) error

	// Update writes every mutable field of the account. Returns ErrEmailTaken on a duplicate address.
	Update(ctx context.Context, account *entity.Account) error

	// Delete removes the account; owned tokens and sessions go with it.
	Delete(ctx context.Context, id uuid.UUID) error
}
