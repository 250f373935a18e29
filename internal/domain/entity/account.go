// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	domainerrors "accounts/internal/domain/errors"

	"github.com/google/uuid"
)

// VerificationState is the email verification axis of an account.
type VerificationState string

const (
	StateUnverified VerificationState = "unverified"
	StateVerified   VerificationState = "verified"
)

// Account is a registered identity keyed by its email address.
type Account struct {
	ID              uuid.UUID // Global unique identifier of the account.
	Email           string    // Normalized primary email, also the login identifier.
	PendingEmail    *string   // Target address of an in-flight email change, nil otherwise.
	PasswordHash    string    // Salted password digest, never the plaintext.
	FirstName       string
	LastName        string
	Phone           string // E.164 formatted phone number, empty when not provided.
	IsEmailVerified bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeEmail trims and lower-cases an address so it can be used as an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount creates an active, unverified account with no pending email change.
func NewAccount(email, passwordHash, firstName, lastName, phone string, now time.Time) *Account {
	return &Account{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Phone:        phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// VerificationState reports where the account is on the verification axis.
func (a *Account) VerificationState() VerificationState {
	if a.IsEmailVerified {
		return StateVerified
	}

	return StateUnverified
}

// HasPendingEmailChange reports whether an email change is in flight.
func (a *Account) HasPendingEmailChange() bool {
	return a.PendingEmail != nil
}

// MarkEmailVerified moves the account to the verified state.
func (a *Account) MarkEmailVerified(now time.Time) {
	a.IsEmailVerified = true
	a.UpdatedAt = now
}

// BeginEmailChange records newEmail as the pending address.
func (a *Account) BeginEmailChange(newEmail string, now time.Time) error {
	normalized := NormalizeEmail(newEmail)
	if normalized == a.Email {
		return domainerrors.ErrNoOpChange
	}

	a.PendingEmail = &normalized
	a.UpdatedAt = now

	return nil
}

// CommitEmailChange swaps the primary address and clears the pending one.
func (a *Account) CommitEmailChange(newEmail string, now time.Time) {
	a.Email = NormalizeEmail(newEmail)
	a.PendingEmail = nil
	a.UpdatedAt = now
}

// ClearPendingEmail abandons an in-flight email change.
func (a *Account) ClearPendingEmail(now time.Time) {
	a.PendingEmail = nil
	a.UpdatedAt = now
}

// ReplacePasswordHash stores a new password digest.
func (a *Account) ReplacePasswordHash(hash string, now time.Time) {
	a.PasswordHash = hash
	a.UpdatedAt = now
}

// UpdateProfile replaces the profile fields that are not nil.
func (a *Account) UpdateProfile(firstName, lastName, phone *string, now time.Time) {
	if firstName != nil {
		a.FirstName = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		a.LastName = strings.TrimSpace(*lastName)
	}
	if phone != nil {
		a.Phone = *phone
	}
	a.UpdatedAt = now
}

// Deactivate disables sign-in for the account without removing it.
func (a *Account) Deactivate(now time.Time) {
	a.IsActive = false
	a.UpdatedAt = now
}

// DisplayName returns the full name, falling back to the email address.
func (a *Account) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}

	return name
}
