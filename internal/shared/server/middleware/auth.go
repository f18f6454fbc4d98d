package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"aari-docs/internal/shared/auth"
	"aari-docs/internal/shared/server/respond"
)

const (
	userIDKey = "userId"

	// SessionCookie carries the session token issued after sign-in.
	SessionCookie = "session"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// AuthOptions configures the Auth middleware.
type AuthOptions struct {
	Verifier  TokenVerifier
	LoginPath string
	// PublicPrefixes are reachable without a session in addition to LoginPath.
	PublicPrefixes []string
}

// DefaultPublicPrefixes lists paths reachable without a session.
var DefaultPublicPrefixes = []string{"/api/auth/", "/api/health", "/metrics"}

// Auth requires a valid session token on every path except the login page and
// the identity-provider routes. API callers get 401; page requests are redirected
// to the login page.
func Auth(opts AuthOptions) gin.HandlerFunc {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	public := append([]string{loginPath}, opts.PublicPrefixes...)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range public {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token := tokenFromRequest(c)
		if token == "" || opts.Verifier == nil {
			reject(c, loginPath)
			return
		}
		claims, err := opts.Verifier.Verify(token)
		if err != nil {
			reject(c, loginPath)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func reject(c *gin.Context, loginPath string) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	target := loginPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
