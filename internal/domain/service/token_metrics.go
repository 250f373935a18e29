package service

import "accounts/internal/domain/entity"

// TokenMetrics records token lifecycle outcomes.
type TokenMetrics interface {
	TokenIssued(kind entity.TokenKind)
	TokenConsumed(kind entity.TokenKind)
	TokenRejected(kind entity.TokenKind, reason string)
	TokensSuperseded(kind entity.TokenKind, count int64)
}
