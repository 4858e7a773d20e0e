package server

import (
	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/authz"
	"github.com/saurav0523/liaplusAI-Backend/internal/di"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/middleware"
	pkgmiddleware "github.com/saurav0523/liaplusAI-Backend/pkg/middleware"
	"github.com/saurav0523/liaplusAI-Backend/pkg/telemetry"
	"go.uber.org/zap"
)

// RouterConfig holds what NewRouter needs besides the container
type RouterConfig struct {
	CORS pkgmiddleware.CORSConfig
	// RateLimiter guards /auth; nil disables rate limiting
	RateLimiter pkgmiddleware.Limiter
	RateLimit   pkgmiddleware.RateLimitConfig
	// Idempotency replays retried signups and post writes; nil disables it
	Idempotency *pkgmiddleware.IdempotencyConfig
	// TrustedProxies may set X-Forwarded-For; empty trusts none and the
	// rate limiter keys on the peer address
	TrustedProxies []string
}

// NewRouter builds the HTTP router
func NewRouter(container *di.Container, cfg *RouterConfig) *gin.Engine {
	log := container.Logger

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", cfg.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(pkgmiddleware.RequestID())
	router.Use(pkgmiddleware.Recovery(log))
	router.Use(telemetry.TracingMiddleware())
	router.Use(pkgmiddleware.Logger(log))
	router.Use(pkgmiddleware.CORSWithConfig(cfg.CORS))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	authenticate := middleware.Authenticate(container.Sessions, log)

	idempotent := func(c *gin.Context) { c.Next() }
	if cfg.Idempotency != nil {
		idem := *cfg.Idempotency
		idem.Subject = subjectOf
		idempotent = pkgmiddleware.Idempotency(&idem, log)
	}

	auth := router.Group("/auth")
	if cfg.RateLimiter != nil {
		auth.Use(pkgmiddleware.RateLimiter(cfg.RateLimiter, cfg.RateLimit, log))
	}
	{
		auth.POST("/signup", idempotent, container.AuthHandler.Signup)
		auth.GET("/verify", container.AuthHandler.Verify)
		auth.POST("/login", container.AuthHandler.Login)
		auth.GET("/me", authenticate, container.AuthHandler.Me)
		auth.PATCH("/me", authenticate, container.AuthHandler.UpdateMe)
	}

	// Role before verification, so a verified user gets INSUFFICIENT_ROLE
	// and an unverified admin gets EMAIL_NOT_VERIFIED
	adminOnly := middleware.Require(authz.RequireRole(domain.RoleAdmin), authz.RequireVerified)

	posts := router.Group("/posts")
	posts.Use(authenticate)
	{
		posts.GET("", middleware.Require(authz.RequireVerified), container.PostHandler.List)
		posts.GET("/:id", middleware.Require(authz.RequireVerified), container.PostHandler.Get)
		posts.POST("", adminOnly, idempotent, container.PostHandler.Create)
		posts.PATCH("/:id", adminOnly, container.PostHandler.Update)
		posts.DELETE("/:id", adminOnly, container.PostHandler.Delete)
	}

	return router
}

// subjectOf scopes idempotency keys to the caller; anonymous requests share
// one scope
func subjectOf(c *gin.Context) string {
	if claims, ok := authz.ClaimsFrom(c.Request.Context()); ok {
		return claims.SubjectID
	}
	return "anonymous"
}
