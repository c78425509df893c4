package token

import (
	"fmt"

	"github.com/circle-space/core/internal/models"
)

// CreateRevokeToken appends the ledger record that kills a token pair by
// its shared jti. The record expires when the refresh half would have;
// callers must persist it before acknowledging logout or refresh to the
// client, never after.
func (s *Signatures) CreateRevokeToken(store Store, claims *Claims) (*models.RevokedTokenModel, error) {
	if claims == nil || claims.ID == "" || claims.IssuedAt == nil {
		return nil, ErrRevokeFailed
	}

	rec := &models.RevokedTokenModel{
		JTI:       claims.ID,
		AccountID: claims.AccountID,
		ExpiresAt: claims.IssuedAt.Time.Add(s.refreshTTL),
	}
	if err := store.InsertRevoked(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRevokeFailed, err)
	}
	return rec, nil
}
