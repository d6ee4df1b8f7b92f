package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// ProductHandler exposes the public catalogue and the admin CRUD surface.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(products *services.ProductService) (*ProductHandler, error) {
	if products == nil {
		return nil, errors.New("product handler: service is required")
	}
	return &ProductHandler{products: products}, nil
}

type productRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	CompareAt   *float64 `json:"compare_at_price" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls"`
	CategoryID  string   `json:"category_id"`
	IsActive    *bool    `json:"is_active"`
}

func (h *ProductHandler) listInput(c *gin.Context, includeAll bool) services.ListProductsInput {
	return services.ListProductsInput{
		Page:         parseIntQuery(c, "page", 1),
		Limit:        parseIntQuery(c, "limit", 20),
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		MinPrice:     parseFloatQueryPtr(c, "min_price"),
		MaxPrice:     parseFloatQueryPtr(c, "max_price"),
		IncludeAll:   includeAll,
	}
}

// List returns active products for the storefront.
func (h *ProductHandler) List(c *gin.Context) {
	page, err := h.products.List(requestContext(c), h.listInput(c, false))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Products, response.NewMeta(page.Page, page.Limit, page.Total))
}

// ListAll returns every product, drafts and inactive included.
func (h *ProductHandler) ListAll(c *gin.Context) {
	page, err := h.products.List(requestContext(c), h.listInput(c, true))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Products, response.NewMeta(page.Page, page.Limit, page.Total))
}

// GetBySlug returns a single active product.
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.products.GetBySlug(requestContext(c), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// Create adds a product to the catalogue.
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.products.Create(requestContext(c), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CompareAt:   req.CompareAt,
		Stock:       req.Stock,
		ImageURLs:   req.ImageURLs,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// Update modifies an existing product.
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.products.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CompareAt:   req.CompareAt,
		Stock:       req.Stock,
		ImageURLs:   req.ImageURLs,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
