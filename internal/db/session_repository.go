package db

import (
	"context"
	"time"

	"github.com/terraincognita07/khare/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	database *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{database: database}
}

func (repo *SessionRepository) Create(ctx context.Context, session *models.AuthSession) error {
	return repo.database.WithContext(ctx).Create(session).Error
}

func (repo *SessionRepository) FindByID(ctx context.Context, sessionID string) (models.AuthSession, error) {
	var session models.AuthSession
	if err := repo.database.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		return models.AuthSession{}, err
	}
	return session, nil
}

// Revoke marks the session revoked. Revoking twice is not an error.
func (repo *SessionRepository) Revoke(ctx context.Context, sessionID string, revokedAt time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", revokedAt.UTC()).Error
}

func (repo *SessionRepository) RevokeAllForAccount(ctx context.Context, accountID string, revokedAt time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).Model(&models.AuthSession{}).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Update("revoked_at", revokedAt.UTC())
	return result.RowsAffected, result.Error
}
