package token

import (
	"github.com/circle-space/core/internal/models"
	"github.com/google/uuid"
)

// Credentials is one issued access/refresh token pair.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// Scheme is the Authorization scheme clients must present with
	// these tokens (Bearer or System).
	Scheme string `json:"scheme"`
}

// IssueCredentials mints a fresh token pair for the account. Both halves
// share one jti so a single ledger record revokes the pair; they differ
// only in secret and lifetime. No state is persisted here.
func (s *Signatures) IssueCredentials(account *models.AccountModel) (Credentials, error) {
	level := ResolveLevel(account.Role)
	pair := s.ForLevel(level)
	jti := uuid.NewString()

	accessToken, err := Sign(account.ID, pair.Access, s.accessTTL, jti)
	if err != nil {
		return Credentials{}, err
	}
	refreshToken, err := Sign(account.ID, pair.Refresh, s.refreshTTL, jti)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Scheme:       SchemeForLevel(level),
	}, nil
}
