package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TokenKind tags what a single-use token grants.
type TokenKind string

const (
	TokenKindVerifyEmail   TokenKind = "verify_email"
	TokenKindChangeEmail   TokenKind = "change_email"
	TokenKindResetPassword TokenKind = "reset_password"
)

// DefaultTokenTTL is the lifetime of a token when no override is configured.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrUnknownTokenKind is returned for a kind outside the policy table.
	ErrUnknownTokenKind = errors.New("unknown token kind")
	// ErrNewEmailRequired is returned when a change_email token is created without a target address.
	ErrNewEmailRequired = errors.New("token kind requires a new email")
	// ErrNewEmailNotAllowed is returned when a payload is attached to a kind that does not carry one.
	ErrNewEmailNotAllowed = errors.New("token kind does not carry a new email")
)

// TokenKindPolicy describes the per-kind rules of the token engine.
type TokenKindPolicy struct {
	TTL              time.Duration
	RequiresNewEmail bool
}

var tokenKindPolicies = map[TokenKind]TokenKindPolicy{
	TokenKindVerifyEmail:   {TTL: DefaultTokenTTL},
	TokenKindChangeEmail:   {TTL: DefaultTokenTTL, RequiresNewEmail: true},
	TokenKindResetPassword: {TTL: DefaultTokenTTL},
}

// TokenKinds returns every supported kind.
func TokenKinds() []TokenKind {
	return []TokenKind{TokenKindVerifyEmail, TokenKindChangeEmail, TokenKindResetPassword}
}

// String returns the string representation of the TokenKind.
func (k TokenKind) String() string {
	return string(k)
}

// IsValid checks if the TokenKind is a valid value.
func (k TokenKind) IsValid() bool {
	_, ok := tokenKindPolicies[k]

	return ok
}

// Policy returns the default rules for the kind.
func (k TokenKind) Policy() (TokenKindPolicy, error) {
	policy, ok := tokenKindPolicies[k]
	if !ok {
		return TokenKindPolicy{}, errors.Wrapf(ErrUnknownTokenKind, "kind %q", k)
	}

	return policy, nil
}

// Token is a single-use, expiring grant owned by one account.
type Token struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Value     string    // URL-safe random value, globally unique.
	Kind      TokenKind // What the token grants.
	NewEmail  *string   // Target address, only set for change_email.
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

// NewToken builds an unused token expiring ttl after now. The payload must match the kind policy.
func NewToken(accountID uuid.UUID, kind TokenKind, value string, newEmail *string, now time.Time, ttl time.Duration) (*Token, error) {
	policy, err := kind.Policy()
	if err != nil {
		return nil, err
	}
	if policy.RequiresNewEmail && (newEmail == nil || *newEmail == "") {
		return nil, errors.WithStack(ErrNewEmailRequired)
	}
	if !policy.RequiresNewEmail && newEmail != nil {
		return nil, errors.WithStack(ErrNewEmailNotAllowed)
	}
	if ttl <= 0 {
		ttl = policy.TTL
	}

	var payload *string
	if newEmail != nil {
		normalized := NormalizeEmail(*newEmail)
		payload = &normalized
	}

	return &Token{
		ID:        uuid.New(),
		AccountID: accountID,
		Value:     value,
		Kind:      kind,
		NewEmail:  payload,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsExpiredAt reports whether the token has reached its expiry at now.
func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsValidAt reports whether the token can still be redeemed at now.
func (t *Token) IsValidAt(now time.Time) bool {
	return !t.IsUsed && !t.IsExpiredAt(now)
}
