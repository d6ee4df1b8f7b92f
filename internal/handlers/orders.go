package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// OrderHandler exposes checkout and order management.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *services.OrderService) (*OrderHandler, error) {
	if orders == nil {
		return nil, errors.New("order handler: service is required")
	}
	return &OrderHandler{orders: orders}, nil
}

type checkoutRequest struct {
	Shipping map[string]any `json:"shipping_address" validate:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

// Checkout converts the caller's cart into an order.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orders.Checkout(requestContext(c), userID, req.Shipping)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, order)
}

// List returns the caller's own orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := h.orders.ListForUser(requestContext(c), userID, services.ListOrdersInput{
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
		Status: c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Orders, response.NewMeta(page.Page, page.Limit, page.Total))
}

// Get returns one of the caller's orders.
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetForUser(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// ListAll returns every order for the back office.
func (h *OrderHandler) ListAll(c *gin.Context) {
	page, err := h.orders.ListAll(requestContext(c), services.ListOrdersInput{
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
		Status: c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Orders, response.NewMeta(page.Page, page.Limit, page.Total))
}

// UpdateStatus advances an order through its lifecycle.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(requestContext(c), strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}
