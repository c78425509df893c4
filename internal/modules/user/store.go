package user

import (
	"errors"
	"time"

	"github.com/circle-space/core/internal/models"
	"gorm.io/gorm"
)

// Users is the repository slice backing account lifecycle operations.
// Freeze, restore and accept are conditional updates: they match the row
// only in the state they expect, so concurrent requests cannot both win.
type Users interface {
	// FindByID returns (nil, nil) when no account matches.
	FindByID(id string) (*models.AccountModel, error)
	Updates(accountID string, fields map[string]interface{}) error
	Freeze(targetID, byID string, at time.Time) (bool, error)
	Restore(targetID, byID string, at time.Time) (bool, error)

	// FindFriendRequest looks the pair up in either direction.
	FindFriendRequest(a, b string) (*models.FriendRequestModel, error)
	CreateFriendRequest(req *models.FriendRequestModel) error
	// AcceptFriendRequest matches only a pending request addressed to
	// recipientID.
	AcceptFriendRequest(requestID, recipientID string, at time.Time) (bool, error)
	PendingFriendRequests(accountID string) ([]models.FriendRequestModel, error)
}

type gormUsers struct{ db *gorm.DB }

func NewUsers(db *gorm.DB) Users { return &gormUsers{db: db} }

func (u *gormUsers) FindByID(id string) (*models.AccountModel, error) {
	var account models.AccountModel
	if err := u.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (u *gormUsers) Updates(accountID string, fields map[string]interface{}) error {
	return u.db.Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Updates(fields).Error
}

func (u *gormUsers) Freeze(targetID, byID string, at time.Time) (bool, error) {
	res := u.db.Model(&models.AccountModel{}).
		Where("id = ? AND freezed_at IS NULL", targetID).
		Updates(map[string]interface{}{
			"freezed_at":            at,
			"freezed_by":            byID,
			"restored_at":           nil,
			"restored_by":           "",
			"change_credentials_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

func (u *gormUsers) Restore(targetID, byID string, at time.Time) (bool, error) {
	res := u.db.Model(&models.AccountModel{}).
		Where("id = ? AND freezed_at IS NOT NULL", targetID).
		Updates(map[string]interface{}{
			"freezed_at":  nil,
			"freezed_by":  "",
			"restored_at": at,
			"restored_by": byID,
		})
	return res.RowsAffected > 0, res.Error
}

func (u *gormUsers) FindFriendRequest(a, b string) (*models.FriendRequestModel, error) {
	var req models.FriendRequestModel
	err := u.db.
		Where("(created_by = ? AND send_to = ?) OR (created_by = ? AND send_to = ?)", a, b, b, a).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (u *gormUsers) CreateFriendRequest(req *models.FriendRequestModel) error {
	return u.db.Create(req).Error
}

func (u *gormUsers) AcceptFriendRequest(requestID, recipientID string, at time.Time) (bool, error) {
	res := u.db.Model(&models.FriendRequestModel{}).
		Where("id = ? AND send_to = ? AND accepted_at IS NULL", requestID, recipientID).
		Update("accepted_at", at)
	return res.RowsAffected > 0, res.Error
}

func (u *gormUsers) PendingFriendRequests(accountID string) ([]models.FriendRequestModel, error) {
	var reqs []models.FriendRequestModel
	err := u.db.
		Where("send_to = ? AND accepted_at IS NULL", accountID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}
