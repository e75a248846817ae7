package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/httperr"
	"github.com/oksasatya/go-ddd-blog-api/pkg/response"
	"github.com/oksasatya/go-ddd-blog-api/pkg/validation"
)

type AuthHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// loginForm is the OAuth2 password-grant form; username carries the email.
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *AuthHandler) login(c *gin.Context, email, password string) (*application.LoginResult, bool) {
	res, err := h.Auth.Login(c.Request.Context(), email, password)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindAuthentication {
			loginFailure.Add(1)
		}
		httperr.Write(c, h.Logger, err)
		return nil, false
	}
	loginSuccess.Add(1)
	return res, true
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, ok := h.login(c, req.Email, req.Password)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

// LoginForm answers with the bare OAuth2 token shape rather than the envelope.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	var req loginForm
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		httperr.Validation(c, "invalid form", validation.ToDetails(err))
		return
	}
	res, ok := h.login(c, req.Username, req.Password)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, tokenResponse{AccessToken: res.AccessToken, TokenType: res.TokenType, ExpiresIn: res.ExpiresIn})
}

// Logout is advisory: tokens are stateless and stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "Successfully logged out. Please discard your access token.", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"is_active":   u.IsActive,
		"is_verified": u.IsVerified,
	}, "current user", nil)
}
