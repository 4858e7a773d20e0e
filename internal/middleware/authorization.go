package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/authz"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/metrics"
	"github.com/saurav0523/liaplusAI-Backend/internal/security"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	pkgmiddleware "github.com/saurav0523/liaplusAI-Backend/pkg/middleware"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
	"go.uber.org/zap"
)

// Authenticate verifies the bearer token and stores the claims in the
// request context
func Authenticate(codec security.SessionTokenCodec, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		claims, err := authz.Authenticate(codec, c.GetHeader("Authorization"))
		if err != nil {
			reason := domain.ErrUnauthenticated.Code
			if cause := tokenCause(err); cause != "" {
				reason = cause
			}
			log.WithContext(ctx).Debug("Authentication failed",
				zap.String("request_id", pkgmiddleware.GetRequestID(c)),
				zap.String("reason", reason),
			)
			metrics.RecordGuardRejection(ctx, reason)
			response.Abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated.Code, domain.ErrUnauthenticated.Message)
			return
		}

		c.Request = c.Request.WithContext(authz.WithClaims(ctx, claims))
		c.Next()
	}
}

// Require runs guards against the claims set by Authenticate. A request that
// reaches it without claims is treated as unauthenticated.
func Require(guards ...authz.Guard) gin.HandlerFunc {
	guard := authz.Chain(guards...)

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		claims, ok := authz.ClaimsFrom(ctx)
		if !ok {
			metrics.RecordGuardRejection(ctx, domain.ErrUnauthenticated.Code)
			response.Abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated.Code, domain.ErrUnauthenticated.Message)
			return
		}

		if err := guard(claims); err != nil {
			de := domain.AsError(err)
			metrics.RecordGuardRejection(ctx, de.Code)
			response.Abort(c, http.StatusForbidden, de.Code, de.Message)
			return
		}

		c.Next()
	}
}

// tokenCause returns the code of the token error behind an authentication
// failure, if any
func tokenCause(err error) string {
	for _, cause := range []*domain.Error{
		domain.ErrTokenExpired,
		domain.ErrTokenBadSignature,
		domain.ErrTokenMalformed,
	} {
		if errors.Is(err, cause) {
			return cause.Code
		}
	}
	return ""
}
