package service

import "accounts/internal/domain/entity"

// PasswordPolicy checks a candidate password against the strength rules.
type PasswordPolicy interface {
	// Check returns one human readable entry per violated rule, or nil when the password passes.
	// account may be nil; when present its attributes are used for similarity checks.
	Check(password string, account *entity.Account) []string
}
