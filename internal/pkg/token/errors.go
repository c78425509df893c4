package token

import "errors"

// Decode and issuance failures. Middleware and the gateway handshake both
// branch on these, so they are exported sentinels rather than module-local.
var (
	// ErrSigning means the configured secret is empty or unusable.
	ErrSigning = errors.New("token: signing secret misconfigured")

	// ErrMissingTokenParts means the Authorization header did not split
	// into scheme and token.
	ErrMissingTokenParts = errors.New("token: missing token parts")

	// ErrUnknownScheme means the scheme is neither Bearer nor System.
	ErrUnknownScheme = errors.New("token: unknown authorization scheme")

	// ErrTokenInvalid means the signature did not verify. Terminal.
	ErrTokenInvalid = errors.New("token: invalid token")

	// ErrTokenExpired means the token lapsed its own expiry. Kept distinct
	// from ErrTokenInvalid because some refresh flows treat it as retryable.
	ErrTokenExpired = errors.New("token: token expired")

	// ErrMalformedPayload means the payload lacks accountId or iat.
	ErrMalformedPayload = errors.New("token: malformed token payload")

	// ErrTokenRevoked means the jti sits in the revocation ledger. The
	// ledger is never consulted for expiry, so this is permanent for the
	// token's identity.
	ErrTokenRevoked = errors.New("token: revoked credentials")

	// ErrAccountNotFound means the embedded account id resolves to nothing.
	ErrAccountNotFound = errors.New("token: account not registered")

	// ErrStaleCredentials means the account invalidated its credentials
	// after this token was issued (freeze, logout-all, password reset).
	ErrStaleCredentials = errors.New("token: stale credentials")

	// ErrRevokeFailed means the ledger insert did not persist. Hard
	// failure: an unpersisted revocation leaves the token valid.
	ErrRevokeFailed = errors.New("token: failed to revoke token")
)
