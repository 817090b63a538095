package db

import (
	"context"
	"time"

	"github.com/terraincognita07/khare/internal/models"
	"gorm.io/gorm"
)

type AccountRepository struct {
	database *gorm.DB
}

func NewAccountRepository(database *gorm.DB) *AccountRepository {
	return &AccountRepository{database: database}
}

// CreateWithProfile inserts the account and its profile in one transaction.
func (repo *AccountRepository) CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return err
		}
		profile.ID = account.ID
		if !profile.Role.Valid() {
			profile.Role = models.DefaultRole
		}
		return tx.Create(profile).Error
	})
}

func (repo *AccountRepository) FindByID(ctx context.Context, accountID string) (models.Account, error) {
	var account models.Account
	if err := repo.database.WithContext(ctx).Where("id = ?", accountID).First(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (repo *AccountRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	if err := repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", email).First(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (repo *AccountRepository) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Account{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ConfirmEmail stamps email_confirmed_at once; later calls keep the first timestamp.
func (repo *AccountRepository) ConfirmEmail(ctx context.Context, accountID string, confirmedAt time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND email_confirmed_at IS NULL", accountID).
		Update("email_confirmed_at", confirmedAt.UTC()).Error
}

func (repo *AccountRepository) UpdatePassword(ctx context.Context, accountID string, passwordHash string) error {
	result := repo.database.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
