package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID               string     `gorm:"primaryKey;type:text" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
}

func (account *Account) BeforeCreate(*gorm.DB) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	return nil
}

func (account Account) EmailConfirmed() bool {
	return account.EmailConfirmedAt != nil
}

type Profile struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      Role      `gorm:"not null;default:client" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName falls back to "User" like the dashboard account menu.
func (profile Profile) DisplayName() string {
	if profile.FullName == nil || *profile.FullName == "" {
		return "User"
	}
	return *profile.FullName
}
