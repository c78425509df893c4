package models

import "time"

// FriendRequestModel links two accounts. A pending request has a nil
// AcceptedAt; an accepted one in either direction makes the two accounts
// friends.
type FriendRequestModel struct {
	Base
	CreatedBy  string     `json:"created_by" gorm:"index;not null"`
	SendTo     string     `json:"send_to"    gorm:"index;not null"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

func (FriendRequestModel) TableName() string { return "friend_requests" }
