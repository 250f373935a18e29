// Package model holds the GORM persistence models. They mirror the SQL schema
// applied by the migrations package and never leave the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table.
type AccountModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Email           string    `gorm:"type:varchar(254);uniqueIndex;not null"`
	PendingEmail    *string   `gorm:"type:varchar(254)"`
	PasswordHash    string    `gorm:"type:varchar(255);not null"`
	FirstName       string    `gorm:"type:varchar(150);not null"`
	LastName        string    `gorm:"type:varchar(150);not null"`
	Phone           string    `gorm:"type:varchar(32);not null"`
	IsEmailVerified bool      `gorm:"not null"`
	IsActive        bool      `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
