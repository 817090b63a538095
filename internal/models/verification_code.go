package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationCode is one outstanding email challenge. Verified is tri-state:
// nil for rows written before the flag existed, false while pending, true once used.
type VerificationCode struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Email     string    `gorm:"not null;index"`
	Code      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Verified  *bool
}

func (code *VerificationCode) BeforeCreate(*gorm.DB) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	return nil
}

func (VerificationCode) TableName() string {
	return "email_verification_codes"
}

func (code VerificationCode) IsVerified() bool {
	return code.Verified != nil && *code.Verified
}

// Active reports whether the code can still be redeemed at now.
func (code VerificationCode) Active(now time.Time) bool {
	return !code.IsVerified() && code.ExpiresAt.After(now)
}
