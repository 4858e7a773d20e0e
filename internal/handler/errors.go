package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/middleware"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status
func statusFor(err *domain.Error) int {
	switch err.Kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthentication, domain.KindToken:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		if err == domain.ErrUnauthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the response envelope. Internal causes are
// logged and never sent to the client.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	de := domain.AsError(err)
	status := statusFor(de)

	if status == http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	message := de.Message
	if errors.Is(err, domain.ErrMissingField) {
		message = err.Error()
	}
	response.Error(c, status, de.Code, message, "")
}
