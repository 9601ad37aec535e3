package auth

import (
	"strings"

	"github.com/folio-space/core/internal/middleware"
	jwtpkg "github.com/folio-space/core/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const authCookieName = "folio-token"

func extractAuthTokenFromRequest(c *gin.Context) string {
	if token := middleware.NormalizeToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if token := middleware.NormalizeToken(c.Query("token")); token != "" {
		return token
	}
	for _, cookieKey := range []string{authCookieName, "token"} {
		if raw, err := c.Cookie(cookieKey); err == nil {
			if token := middleware.NormalizeToken(raw); token != "" {
				return token
			}
		}
	}
	return ""
}

func resolveSessionIDFromToken(rawToken string) string {
	token := middleware.NormalizeToken(rawToken)
	if token == "" {
		return ""
	}
	if claims, err := jwtpkg.Parse(token); err == nil {
		return strings.TrimSpace(claims.SessionID)
	}
	return strings.TrimSpace(token)
}

func setAuthTokenCookie(c *gin.Context, token string) {
	const maxAge = 30 * 24 * 60 * 60
	secure := c.Request.TLS != nil
	c.SetCookie(authCookieName, token, maxAge, "/", "", secure, false)
}

func clearAuthTokenCookie(c *gin.Context) {
	secure := c.Request.TLS != nil
	c.SetCookie(authCookieName, "", -1, "/", "", secure, false)
}
