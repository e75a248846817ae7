package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/httperr"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog-api/pkg/validation"
)

var errNoUser = errors.New("handler mounted without auth middleware")

type pageQuery struct {
	Skip  *int `form:"skip" binding:"omitempty,gte=0"`
	Limit *int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

func (q pageQuery) pagination() application.Pagination {
	p := application.Pagination{Limit: application.DefaultPageLimit}
	if q.Skip != nil {
		p.Skip = *q.Skip
	}
	if q.Limit != nil {
		p.Limit = *q.Limit
	}
	return p
}

// bindJSON binds and validates the body; on failure it has already answered 422.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.Validation(c, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		httperr.Validation(c, "invalid query", validation.ToDetails(err))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httperr.Validation(c, "invalid path parameter", map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated caller; routes using it sit behind middleware.Auth.
func currentUser(c *gin.Context, logger *logrus.Logger) (*entity.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httperr.Write(c, logger, apperror.Internal("Missing session", errNoUser))
		return nil, false
	}
	return u, true
}
