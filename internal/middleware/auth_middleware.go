package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/service"
)

// TokenCookie is the session cookie name shared with the auth handlers.
const TokenCookie = "token"

// RequireSession is a Gin middleware that authenticates a request from the
// session token cookie. The cookie is the only accepted transport; there is
// no Authorization-header fallback.
func RequireSession(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(TokenCookie)
		if err != nil || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("claims", claims)
		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}
