package middleware

import (
	"net/http"
	"strings"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenParser turns a bearer token into the caller it was issued to.
type TokenParser interface {
	Parse(token string) (entity.Principal, error)
}

// Auth rejects requests without a valid bearer token.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		p, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthorized(c, entity.ErrInvalidToken.Error())
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if p, err := tokens.Parse(raw); err == nil {
				c.Set(principalKey, p)
			}
		}
		c.Next()
	}
}

// Principal returns the authenticated caller, if any.
func Principal(c *gin.Context) (entity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return entity.Principal{}, false
	}
	p, ok := v.(entity.Principal)
	return p, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   msg,
	})
}

// RequireRole must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			abortUnauthorized(c, entity.ErrUnauthenticated.Error())
			return
		}
		for _, role := range roles {
			if p.Is(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   entity.ErrRoleRequired.Error(),
		})
	}
}
