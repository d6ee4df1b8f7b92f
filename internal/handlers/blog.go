package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/middleware"
	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// BlogHandler exposes published articles and the admin authoring surface.
type BlogHandler struct {
	blog *services.BlogService
}

// NewBlogHandler constructs a BlogHandler.
func NewBlogHandler(blog *services.BlogService) (*BlogHandler, error) {
	if blog == nil {
		return nil, errors.New("blog handler: service is required")
	}
	return &BlogHandler{blog: blog}, nil
}

type blogPostRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	Excerpt   string `json:"excerpt"`
	Body      string `json:"body" validate:"required"`
	CoverURL  string `json:"cover_url"`
	Published *bool  `json:"published"`
}

// List returns published posts.
func (h *BlogHandler) List(c *gin.Context) {
	page, err := h.blog.List(requestContext(c), services.ListBlogInput{
		Page:  parseIntQuery(c, "page", 1),
		Limit: parseIntQuery(c, "limit", 20),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Posts, response.NewMeta(page.Page, page.Limit, page.Total))
}

// ListAll returns every post, drafts included.
func (h *BlogHandler) ListAll(c *gin.Context) {
	page, err := h.blog.List(requestContext(c), services.ListBlogInput{
		Page:       parseIntQuery(c, "page", 1),
		Limit:      parseIntQuery(c, "limit", 20),
		IncludeAll: true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Posts, response.NewMeta(page.Page, page.Limit, page.Total))
}

// GetBySlug returns one published post.
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	post, err := h.blog.GetBySlug(requestContext(c), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, post)
}

// Create authors a post, attributed to the acting admin.
func (h *BlogHandler) Create(c *gin.Context) {
	var req blogPostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, err := h.blog.Create(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.BlogPostInput{
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		CoverURL:  req.CoverURL,
		Published: req.Published,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, post)
}

// Update modifies a post.
func (h *BlogHandler) Update(c *gin.Context) {
	var req blogPostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, err := h.blog.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.BlogPostInput{
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		CoverURL:  req.CoverURL,
		Published: req.Published,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, post)
}

// Delete removes a post.
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blog.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
