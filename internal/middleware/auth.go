package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/response"
	"github.com/circle-space/core/internal/pkg/token"
)

const (
	contextKeyAccount = "account"
	contextKeyClaims  = "claims"
)

// Auth returns a middleware that runs the Authorization header through the
// token decode pipeline and attaches the result to the request context.
// The same pipeline gates the gateway handshake.
func Auth(sigs *token.Signatures, store token.Store, typ token.Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		decoded, err := sigs.Decode(store, c.GetHeader("Authorization"), typ)
		if err != nil {
			respondDecodeError(c, err)
			return
		}
		c.Set(contextKeyAccount, decoded.Account)
		c.Set(contextKeyClaims, decoded.Claims)
		c.Next()
	}
}

// RequireRole gates a route behind a minimum role tier. Must run after Auth.
func RequireRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account == nil {
			response.Unauthorized(c, "")
			return
		}
		if models.RoleRank(account.Role) < models.RoleRank(minRole) {
			response.Forbidden(c, "")
			return
		}
		c.Next()
	}
}

// CurrentAccount extracts the authenticated account from context.
func CurrentAccount(c *gin.Context) *models.AccountModel {
	v, _ := c.Get(contextKeyAccount)
	account, _ := v.(*models.AccountModel)
	return account
}

// CurrentClaims extracts the decoded token claims from context.
func CurrentClaims(c *gin.Context) *token.Claims {
	v, _ := c.Get(contextKeyClaims)
	claims, _ := v.(*token.Claims)
	return claims
}

// respondDecodeError maps pipeline errors onto the response taxonomy:
// malformed input is a 400, every authentication rejection a generic 401.
func respondDecodeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, token.ErrMissingTokenParts),
		errors.Is(err, token.ErrUnknownScheme),
		errors.Is(err, token.ErrMalformedPayload):
		response.BadRequest(c, err.Error())
	case errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenInvalid),
		errors.Is(err, token.ErrTokenRevoked),
		errors.Is(err, token.ErrStaleCredentials),
		errors.Is(err, token.ErrAccountNotFound):
		// Deliberately indistinguishable to the client.
		response.Unauthorized(c, "")
	default:
		response.InternalError(c, err)
	}
}
