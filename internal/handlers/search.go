package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// SearchHandler exposes the storefront-wide search endpoint.
type SearchHandler struct {
	search *services.SearchService
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(search *services.SearchService) (*SearchHandler, error) {
	if search == nil {
		return nil, errors.New("search handler: service is required")
	}
	return &SearchHandler{search: search}, nil
}

// Search fans the query out across products, categories and blog posts.
func (h *SearchHandler) Search(c *gin.Context) {
	result, err := h.search.Search(requestContext(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
