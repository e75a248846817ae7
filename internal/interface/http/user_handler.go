package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/httperr"
	"github.com/oksasatya/go-ddd-blog-api/pkg/response"
)

type UserHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,strongpwd,max=72"`
}

type updateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,strongpwd,max=72"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.Register(c.Request.Context(), application.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	usersRegistered.Add(1)
	response.Success(c, http.StatusCreated, toUserResponse(u), "user created", nil)
}

func (h *UserHandler) Me(c *gin.Context) {
	u, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

func (h *UserHandler) MeWithBlogs(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	u, posts, err := h.Users.WithPosts(c.Request.Context(), caller)
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, userWithPostsResponse{userResponse: toUserResponse(u), Blogs: toPostResponses(posts)}, "profile with blogs", nil)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), caller, application.UpdateProfileInput{Name: req.Name, Email: req.Email})
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), caller, req.CurrentPassword, req.NewPassword); err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"password_changed": true}, "password changed", nil)
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	u, err := h.Users.Deactivate(c.Request.Context(), caller)
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "account deactivated", nil)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), caller); err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
