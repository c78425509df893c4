package token

import (
	"strings"

	"github.com/circle-space/core/internal/models"
)

// Decoded is a successful decode: the loaded account plus the verified
// claims it presented.
type Decoded struct {
	Account *models.AccountModel
	Claims  *Claims
}

// Decode is the single authorization gate shared by the REST middleware
// and the gateway handshake. It takes the raw Authorization header value
// and which half of the pair is expected, and re-runs every check on each
// call:
//
//	scheme split → level resolve → signature verify → payload shape →
//	revocation ledger → account load → stale-credentials compare.
func (s *Signatures) Decode(store Store, authorization string, typ Type) (*Decoded, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	raw = strings.TrimSpace(raw)
	if !ok || scheme == "" || raw == "" {
		return nil, ErrMissingTokenParts
	}

	level, err := LevelForScheme(scheme)
	if err != nil {
		return nil, err
	}

	claims, err := Verify(raw, s.ForLevel(level).secretFor(typ))
	if err != nil {
		return nil, err
	}
	if claims.AccountID == "" || claims.IssuedAt == nil {
		return nil, ErrMalformedPayload
	}

	if claims.ID != "" {
		revoked, err := store.RevokedExists(claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	account, err := store.FindAccountByID(claims.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.ChangeCredentialsAt != nil && account.ChangeCredentialsAt.After(claims.IssuedAt.Time) {
		return nil, ErrStaleCredentials
	}

	return &Decoded{Account: account, Claims: claims}, nil
}
