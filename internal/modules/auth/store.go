package auth

import (
	"errors"

	"github.com/circle-space/core/internal/models"
	"gorm.io/gorm"
)

// Accounts is the slice of the account repository the auth flows need.
// The OTP controller only ever issues point updates to the OTP, ban and
// credential-invalidation fields; the account row is owned elsewhere.
type Accounts interface {
	// FindByEmail returns (nil, nil) when no account matches.
	FindByEmail(email string) (*models.AccountModel, error)
	Create(account *models.AccountModel) error
	// Updates applies a point update to the account row.
	Updates(accountID string, fields map[string]interface{}) error
}

type gormAccounts struct{ db *gorm.DB }

// NewAccounts returns the database-backed Accounts.
func NewAccounts(db *gorm.DB) Accounts { return &gormAccounts{db: db} }

func (a *gormAccounts) FindByEmail(email string) (*models.AccountModel, error) {
	var account models.AccountModel
	if err := a.db.Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (a *gormAccounts) Create(account *models.AccountModel) error {
	return a.db.Create(account).Error
}

func (a *gormAccounts) Updates(accountID string, fields map[string]interface{}) error {
	return a.db.Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Updates(fields).Error
}
