package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "aari-docs/internal/auth"
	"aari-docs/internal/comments"
	"aari-docs/internal/documents"
	"aari-docs/internal/imports"
	"aari-docs/internal/search"
	"aari-docs/internal/services/health"
	"aari-docs/internal/shared/config"
	"aari-docs/internal/shared/metrics"
	"aari-docs/internal/shared/server/middleware"
	"aari-docs/internal/shared/server/respond"
	"aari-docs/internal/users"
)

// RouterDeps lists the handlers mounted on the router. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	Health          *health.Service
	GoogleAuth      *googleauth.GoogleService
	UserHandler     *users.Handler
	DocumentHandler *documents.Handler
	ImportHandler   *imports.Handler
	CommentHandler  *comments.Handler
	SearchHandler   *search.Handler
	// DisableAuth turns off the session check. Only used by tests.
	DisableAuth bool
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	if !deps.DisableAuth {
		r.Use(middleware.Auth(middleware.AuthOptions{
			Verifier:       deps.Verifier,
			LoginPath:      deps.Config.LoginPath,
			PublicPrefixes: middleware.DefaultPublicPrefixes,
		}))
	}
	if deps.Config.RateLimitRPS > 0 {
		rule := middleware.RateLimitRule{Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst}
		writes := middleware.RateLimitRule{Rate: deps.Config.RateLimitRPS / 2, Burst: max(deps.Config.RateLimitBurst/2, 1)}
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.RateLimitGroupRead:  rule,
				middleware.RateLimitGroupWrite: writes,
			},
			GroupFor: middleware.GroupByMethod,
		}))
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		body, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ImportHandler != nil {
		deps.ImportHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.CommentHandler != nil {
		deps.CommentHandler.RegisterRoutes(api)
	}
	if deps.SearchHandler != nil {
		deps.SearchHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
