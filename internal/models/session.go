package models

import "time"

const (
	AuthMethodPassword  = "password"
	AuthMethodEmailCode = "email_code"
)

// AuthSession is the server-side record behind an issued session token.
type AuthSession struct {
	ID        string    `gorm:"primaryKey;type:text"`
	AccountID string    `gorm:"not null;index"`
	Method    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	RevokedAt *time.Time
}

func (session AuthSession) Active(now time.Time) bool {
	return session.RevokedAt == nil && session.ExpiresAt.After(now)
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the in-memory view of an authenticated user.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"-"`
	User      SessionUser `json:"user"`
	Profile   *Profile    `json:"profile,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Role returns the profile role, or an empty role when no profile is loaded.
func (session *Session) Role() Role {
	if session == nil || session.Profile == nil {
		return ""
	}
	return session.Profile.Role
}

// AuthState is replaced wholesale on every auth-state change.
type AuthState struct {
	Session *Session `json:"session"`
	Loading bool     `json:"loading"`
}

func (state AuthState) Authenticated() bool {
	return !state.Loading && state.Session != nil
}
