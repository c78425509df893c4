package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the signed token payload. The wire shape is fixed:
// accountId plus the registered iat/exp/jti claims.
type Claims struct {
	AccountID string `json:"accountId"`
	jwtlib.RegisteredClaims
}

// Sign creates a signed, time-bounded token for the given account id.
func Sign(accountID, secret string, ttl time.Duration, jti string) (string, error) {
	if secret == "" {
		return "", ErrSigning
	}
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify validates a token string against a secret and returns the claims.
// Lapsed expiry yields ErrTokenExpired; every other verification failure
// yields ErrTokenInvalid.
func Verify(tokenStr, secret string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
