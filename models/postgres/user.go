package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

/*
 * 'User' contains the blueprint definition of a platform user. It holds a
 * reference to the user's Wallet, the single source of truth for Chips.
 */
type User struct {
	ID           string    `gorm:"primaryKey;size:36;not null"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	DisplayName  string    `gorm:"size:100;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         UserRole  `gorm:"size:10;default:'USER'"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	Wallet Wallet `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
