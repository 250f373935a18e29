package service

import "time"

// TokenGenerator produces unguessable URL-safe token values.
type TokenGenerator interface {
	Generate() (string, error)
}

// Clock is the time source of the token engine and account flows.
type Clock interface {
	Now() time.Time
}

// PhoneNormalizer validates a phone number and returns its canonical form.
type PhoneNormalizer interface {
	Normalize(phone string) (string, error)
}
