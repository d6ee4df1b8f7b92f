package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// CartHandler exposes the caller's shopping cart.
type CartHandler struct {
	carts *services.CartService
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(carts *services.CartService) (*CartHandler, error) {
	if carts == nil {
		return nil, errors.New("cart handler: service is required")
	}
	return &CartHandler{carts: carts}, nil
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// Get returns the cart, creating an empty one on first use.
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := h.carts.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// AddItem puts a product in the cart or raises its quantity.
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req addCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	cart, err := h.carts.AddItem(requestContext(c), userID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req updateCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	cart, err := h.carts.UpdateItem(requestContext(c), userID, strings.TrimSpace(c.Param("id")), *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// RemoveItem deletes a line from the cart.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(requestContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}
