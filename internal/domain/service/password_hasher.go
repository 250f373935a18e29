// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher hashes account passwords and checks login, change and delete
// credentials against the stored hash.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash.
	Check(password, hash string) bool

	// CheckUnknown does the work of Check against a decoy hash and always reports
	// false. Callers with no account to check use it so an unknown email takes as
	// long to reject as a wrong password.
	CheckUnknown(password string)
}
