package token

import (
	"time"

	"github.com/circle-space/core/internal/config"
	"github.com/circle-space/core/internal/models"
)

// Level selects which secret pair signs and verifies an account's tokens.
type Level int

const (
	// LevelStandard covers regular accounts.
	LevelStandard Level = iota
	// LevelElevated covers admin and super-admin accounts.
	LevelElevated
)

// Wire schemes. The Authorization scheme doubles as the level selector.
const (
	SchemeBearer = "Bearer"
	SchemeSystem = "System"
)

// Type discriminates which half of a credentials pair is being verified.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Pair is one access/refresh secret pair.
type Pair struct {
	Access  string
	Refresh string
}

// Signatures owns the two secret pairs and the token lifetimes. It is the
// single construction point for everything that signs or decodes tokens.
type Signatures struct {
	user       Pair
	system     Pair
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSignatures(cfg config.SecurityConfig) *Signatures {
	return &Signatures{
		user:       Pair{Access: cfg.AccessUserSignature, Refresh: cfg.RefreshUserSignature},
		system:     Pair{Access: cfg.AccessSystemSignature, Refresh: cfg.RefreshSystemSignature},
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// ResolveLevel maps an account role to its signature level. Unknown roles
// fall through to Standard.
func ResolveLevel(role string) Level {
	switch role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return LevelElevated
	default:
		return LevelStandard
	}
}

// LevelForScheme maps a wire scheme to a signature level.
func LevelForScheme(scheme string) (Level, error) {
	switch scheme {
	case SchemeBearer:
		return LevelStandard, nil
	case SchemeSystem:
		return LevelElevated, nil
	default:
		return LevelStandard, ErrUnknownScheme
	}
}

// SchemeForLevel is the inverse mapping, used when handing credentials to
// clients so they present the right scheme later.
func SchemeForLevel(level Level) string {
	if level == LevelElevated {
		return SchemeSystem
	}
	return SchemeBearer
}

// ForLevel returns the secret pair for a level.
func (s *Signatures) ForLevel(level Level) Pair {
	if level == LevelElevated {
		return s.system
	}
	return s.user
}

// RefreshTTL exposes the refresh lifetime for ledger expiry computation.
func (s *Signatures) RefreshTTL() time.Duration { return s.refreshTTL }

func (p Pair) secretFor(typ Type) string {
	if typ == TypeRefresh {
		return p.Refresh
	}
	return p.Access
}
