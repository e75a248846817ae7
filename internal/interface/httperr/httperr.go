// Package httperr renders service errors as HTTP responses.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/pkg/response"
)

const genericMessage = "Internal server error"

// Status maps a taxonomy kind to its HTTP status.
func Status(k apperror.Kind) int {
	switch k {
	case apperror.KindAuthentication:
		return http.StatusUnauthorized
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Write answers with the status and message for err. Server-side kinds get a
// generic message; their cause is logged, never echoed.
func Write(c *gin.Context, logger *logrus.Logger, err error) {
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		ae = apperror.Internal(genericMessage, err)
	}
	status := Status(ae.Kind)
	msg := ae.Message
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"kind":       ae.Kind.String(),
				"path":       c.Request.URL.Path,
			}).Error("request failed")
		}
		msg = genericMessage
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	response.Error[any](c, status, msg, response.ErrorBody{Code: ae.Kind.String()})
}

// Validation answers 422 with per-field details.
func Validation(c *gin.Context, message string, details map[string]string) {
	response.Error[any](c, http.StatusUnprocessableEntity, message, response.ErrorBody{
		Code:    apperror.KindValidation.String(),
		Details: details,
	})
}
