package models

import "time"

// Role tiers, ordered: user < admin < super-admin.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// Login providers.
const (
	ProviderSystem = "system"
	ProviderGoogle = "google"
)

// RoleRank maps a role to its tier for privilege comparisons.
// Unknown roles rank lowest.
func RoleRank(role string) int {
	switch role {
	case RoleSuperAdmin:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// AccountModel represents a registered account.
// Federated (Google) accounts carry a random password hash that never
// matches a login attempt.
type AccountModel struct {
	Base
	FirstName string `json:"first_name" gorm:"not null"`
	LastName  string `json:"last_name"  gorm:"not null"`
	Email     string `json:"email"      gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	Phone     string `json:"phone,omitempty"`
	Gender    string `json:"gender"`
	Role      string `json:"role"     gorm:"default:user;index"`
	Provider  string `json:"provider" gorm:"default:system"`

	ProfileImage string `json:"profile_image,omitempty"`

	// ConfirmedAt is set once the email OTP is consumed; unconfirmed
	// accounts cannot log in with a password.
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	// OTP lifecycle fields, shared by email confirmation and password
	// reset. OTPHash is a bcrypt hash of the last issued code.
	OTPHash           string     `json:"-"`
	OTPCreatedAt      *time.Time `json:"-"`
	OTPFailedAttempts int        `json:"-" gorm:"default:0"`
	OTPBannedUntil    *time.Time `json:"-"`

	// ChangeCredentialsAt retroactively invalidates every token issued
	// before it (freeze, logout-all, password reset).
	ChangeCredentialsAt *time.Time `json:"-" gorm:"index"`

	FreezedAt  *time.Time `json:"freezed_at,omitempty"`
	FreezedBy  string     `json:"-"`
	RestoredAt *time.Time `json:"restored_at,omitempty"`
	RestoredBy string     `json:"-"`
}

func (AccountModel) TableName() string { return "accounts" }

// FullName joins first and last name the way the clients render it.
func (a *AccountModel) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Confirmed reports whether the account completed email confirmation.
func (a *AccountModel) Confirmed() bool { return a.ConfirmedAt != nil }
