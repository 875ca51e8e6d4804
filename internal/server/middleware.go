package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"devstreak/internal/apperr"
	"devstreak/internal/identity"
)

const identityKey = "devstreak.identity"

// authRequired resolves the bearer token through the identity verifier
// and aborts with unauthorized when no usable identity comes back.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" {
			s.respondError(c, apperr.New(apperr.Unauthorized, "authentication required"))
			c.Abort()
			return
		}

		ident, err := s.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			s.respondError(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// currentIdentity returns the authenticated principal set by
// authRequired.
func currentIdentity(c *gin.Context) identity.Identity {
	ident, _ := c.Get(identityKey)
	principal, _ := ident.(identity.Identity)
	return principal
}
