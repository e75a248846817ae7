package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/httperr"
)

const CtxUserKey = "currentUser"

// Resolver turns a bearer token into the current user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*entity.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Auth requires a valid bearer token for an active user and stores the user
// under CtxUserKey.
func Auth(res Resolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			httperr.Write(c, logger, apperror.Authentication("Not authenticated"))
			return
		}
		u, err := res.Resolve(c.Request.Context(), token)
		if err != nil {
			httperr.Write(c, logger, err)
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// OptionalAuth sets the user when a usable token is presented and otherwise
// lets the request through anonymously.
func OptionalAuth(res Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c.GetHeader("Authorization")); ok {
			if u, err := res.Resolve(c.Request.Context(), token); err == nil {
				c.Set(CtxUserKey, u)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Auth or OptionalAuth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
