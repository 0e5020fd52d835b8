package model

import (
	"time"

	"github.com/google/uuid"
)

// SauceModel mirrors the 'sauces' table. Likes and Dislikes are denormalized
// from sauce_votes and rewritten on every vote.
type SauceModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Manufacturer string    `gorm:"type:varchar(100);not null"`
	Description  string    `gorm:"type:text;not null"`
	MainPepper   string    `gorm:"type:varchar(100);not null"`
	Heat         int       `gorm:"not null"`
	ImageURL     string    `gorm:"type:text;not null"`
	ImageKey     string    `gorm:"type:text;not null"`
	Likes        int       `gorm:"not null;default:0"`
	Dislikes     int       `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Votes []SauceVoteModel `gorm:"foreignKey:SauceID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (SauceModel) TableName() string {
	return "sauces"
}

// SauceVoteModel mirrors the 'sauce_votes' table. The composite primary key
// keeps a user in at most one of the liked and disliked sets.
type SauceVoteModel struct {
	SauceID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Value     int       `gorm:"type:smallint;not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SauceVoteModel) TableName() string {
	return "sauce_votes"
}
