package token

import (
	"errors"

	"github.com/circle-space/core/internal/models"
	"gorm.io/gorm"
)

// Store gives the decode pipeline its two external collaborators: the
// account repository and the revocation ledger.
type Store interface {
	// FindAccountByID returns (nil, nil) when no account matches.
	FindAccountByID(id string) (*models.AccountModel, error)
	// RevokedExists reports whether a jti sits in the ledger.
	RevokedExists(jti string) (bool, error)
	// InsertRevoked appends a ledger record.
	InsertRevoked(rec *models.RevokedTokenModel) error
}

type gormStore struct{ db *gorm.DB }

// NewStore returns the database-backed Store.
func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) FindAccountByID(id string) (*models.AccountModel, error) {
	var account models.AccountModel
	if err := s.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (s *gormStore) RevokedExists(jti string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RevokedTokenModel{}).
		Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

func (s *gormStore) InsertRevoked(rec *models.RevokedTokenModel) error {
	return s.db.Create(rec).Error
}
