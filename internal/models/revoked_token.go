package models

import "time"

// RevokedTokenModel is the denylist record for an invalidated token pair.
// Rows are append-only: written once on single-session logout or refresh,
// never updated. ExpiresAt marks when an external sweeper may purge the
// row; decode treats mere presence as terminal regardless of it.
type RevokedTokenModel struct {
	Base
	JTI       string    `json:"jti"        gorm:"uniqueIndex;not null"`
	AccountID string    `json:"account_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (RevokedTokenModel) TableName() string { return "revoked_tokens" }
