package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/httperr"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog-api/pkg/response"
)

// MaxCoverBytes bounds a cover upload.
const MaxCoverBytes = 5 << 20

type BlogHandler struct {
	Blogs  *application.BlogService
	Logger *logrus.Logger
}

func NewBlogHandler(blogs *application.BlogService, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{Blogs: blogs, Logger: logger}
}

type createPostRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Content     string  `json:"content" binding:"required,min=10,max=10000"`
	Summary     *string `json:"summary" binding:"omitempty,max=500"`
	IsPublished bool    `json:"is_published"`
}

type updatePostRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content     *string `json:"content" binding:"omitempty,min=10,max=10000"`
	Summary     *string `json:"summary" binding:"omitempty,max=500"`
	IsPublished *bool   `json:"is_published"`
}

type searchQuery struct {
	pageQuery
	Q string `form:"q" binding:"required,min=1,max=200"`
}

func (h *BlogHandler) Create(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Blogs.Create(c.Request.Context(), caller, application.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Summary:     req.Summary,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	postsCreated.Add(1)
	response.Success(c, http.StatusCreated, toPostResponse(p), "blog post created", nil)
}

func (h *BlogHandler) List(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.Blogs.List(c.Request.Context(), q.pagination())
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPageResponse(page), "blog posts", nil)
}

func (h *BlogHandler) Search(c *gin.Context) {
	var q searchQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.Blogs.Search(c.Request.Context(), q.Q, q.pagination())
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPageResponse(page), "search results", nil)
}

func (h *BlogHandler) Mine(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.Blogs.ListMine(c.Request.Context(), caller, q.pagination())
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPageResponse(page), "my blog posts", nil)
}

// Get is mounted behind OptionalAuth so owners can read their drafts.
func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer, _ := middleware.CurrentUser(c)
	view, err := h.Blogs.Get(c.Request.Context(), viewer, id)
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, postDetailResponse{postResponse: toPostResponse(view.Post), Creator: view.Creator}, "blog post", nil)
}

func (h *BlogHandler) Update(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Blogs.Update(c.Request.Context(), caller, id, application.UpdatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Summary:     req.Summary,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p), "blog post updated", nil)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Blogs.Delete(c.Request.Context(), caller, id); err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BlogHandler) Publish(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Blogs.Publish(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p), "blog post published", nil)
}

// UploadCover takes a multipart "file" field. The content type is sniffed, not trusted.
func (h *BlogHandler) UploadCover(c *gin.Context) {
	caller, ok := currentUser(c, h.Logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxCoverBytes+1<<10)
	fh, err := c.FormFile("file")
	if err != nil {
		httperr.Validation(c, "invalid upload", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > MaxCoverBytes {
		httperr.Validation(c, "invalid upload", map[string]string{"file": "must be at most 5 MiB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		httperr.Validation(c, "invalid upload", map[string]string{"file": "cannot be read"})
		return
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		httperr.Validation(c, "invalid upload", map[string]string{"file": "must not be empty"})
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)

	p, err := h.Blogs.UploadCover(c.Request.Context(), caller, id, contentType, io.MultiReader(bytes.NewReader(head), f))
	if err != nil {
		httperr.Write(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p), "cover uploaded", nil)
}
