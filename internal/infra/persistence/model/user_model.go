package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. IDs are UUIDv7 assigned by the repository.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmailDigest  string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(72);not null"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
