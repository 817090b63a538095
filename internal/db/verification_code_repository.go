package db

import (
	"context"
	"slices"
	"time"

	"github.com/terraincognita07/khare/internal/models"
	"github.com/terraincognita07/khare/internal/security"
	"gorm.io/gorm"
)

const pendingCodeCondition = "(verified IS NULL OR verified = ?)"

type VerificationCodeRepository struct {
	database *gorm.DB
}

func NewVerificationCodeRepository(database *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{database: database}
}

// Generate stores code as the only redeemable code for email. Every older
// pending code for the same email is expired at now in the same transaction.
func (repo *VerificationCodeRepository) Generate(ctx context.Context, email string, code string, now time.Time, ttl time.Duration) (models.VerificationCode, error) {
	now = now.UTC()
	pending := false
	entry := models.VerificationCode{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Verified:  &pending,
	}

	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VerificationCode{}).
			Where("email = ? AND expires_at > ? AND "+pendingCodeCondition, email, now, false).
			Update("expires_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return models.VerificationCode{}, err
	}
	return entry, nil
}

// Verify redeems a pending, unexpired code. The conditional update makes
// redemption single use even when two requests race on the same code.
func (repo *VerificationCodeRepository) Verify(ctx context.Context, email string, code string, now time.Time) (bool, error) {
	now = now.UTC()
	redeemed := false

	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []models.VerificationCode
		if err := tx.
			Where("email = ? AND expires_at > ? AND "+pendingCodeCondition, email, now, false).
			Order("created_at DESC").
			Find(&pending).Error; err != nil {
			return err
		}
		index := slices.IndexFunc(pending, func(entry models.VerificationCode) bool {
			return security.EqualCodes(entry.Code, code)
		})
		if index < 0 {
			return nil
		}
		entry := pending[index]

		updated := tx.Model(&models.VerificationCode{}).
			Where("id = ? AND "+pendingCodeCondition, entry.ID, false).
			Update("verified", true)
		if updated.Error != nil {
			return updated.Error
		}
		redeemed = updated.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return redeemed, nil
}

func (repo *VerificationCodeRepository) Create(ctx context.Context, entry *models.VerificationCode) error {
	return repo.database.WithContext(ctx).Create(entry).Error
}

func (repo *VerificationCodeRepository) ListByEmail(ctx context.Context, email string) ([]models.VerificationCode, error) {
	codes := make([]models.VerificationCode, 0)
	if err := repo.database.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
