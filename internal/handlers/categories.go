package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// CategoryHandler exposes catalogue categories.
type CategoryHandler struct {
	categories *services.CategoryService
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(categories *services.CategoryService) (*CategoryHandler, error) {
	if categories == nil {
		return nil, errors.New("category handler: service is required")
	}
	return &CategoryHandler{categories: categories}, nil
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"omitempty,slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// List returns active categories; admins may request inactive ones too.
func (h *CategoryHandler) List(c *gin.Context) {
	rows, err := h.categories.List(requestContext(c), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// ListAll returns every category including inactive ones.
func (h *CategoryHandler) ListAll(c *gin.Context) {
	rows, err := h.categories.List(requestContext(c), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// GetBySlug returns one category.
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	category, err := h.categories.GetBySlug(requestContext(c), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// Create adds a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Create(requestContext(c), services.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// Update modifies a category.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
