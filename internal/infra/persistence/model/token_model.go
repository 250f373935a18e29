package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountTokenModel mirrors the 'account_tokens' table.
type AccountTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index:idx_account_tokens_account_kind"`
	Value     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Kind      string    `gorm:"type:varchar(32);not null;index:idx_account_tokens_account_kind"`
	NewEmail  *string   `gorm:"type:varchar(254)"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
	IsUsed    bool      `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (AccountTokenModel) TableName() string {
	return "account_tokens"
}

// RefreshTokenModel mirrors the 'refresh_tokens' table.
type RefreshTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(255);unique;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
