package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// ReviewHandler exposes product reviews. Routes nest under the product
// slug, so the handler resolves the slug before touching the review
// service.
type ReviewHandler struct {
	reviews  *services.ReviewService
	products *services.ProductService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService, products *services.ProductService) (*ReviewHandler, error) {
	if reviews == nil {
		return nil, errors.New("review handler: review service is required")
	}
	if products == nil {
		return nil, errors.New("review handler: product service is required")
	}
	return &ReviewHandler{reviews: reviews, products: products}, nil
}

type createReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title" validate:"max=255"`
	Body   string `json:"body"`
}

func (h *ReviewHandler) resolveProduct(c *gin.Context) (string, bool) {
	product, err := h.products.GetBySlug(requestContext(c), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return product.ID, true
}

// ListForProduct returns a product's reviews, newest first.
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.resolveProduct(c)
	if !ok {
		return
	}

	rows, err := h.reviews.ListForProduct(requestContext(c), productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// Create records the caller's review for a product.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := h.resolveProduct(c)
	if !ok {
		return
	}

	var req createReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	review, err := h.reviews.Create(requestContext(c), userID, services.CreateReviewInput{
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, review)
}

// Delete removes the caller's review.
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.reviews.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("reviewId"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
