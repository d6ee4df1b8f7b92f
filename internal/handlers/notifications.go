package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mchen88/cartly/internal/notifications"
	"github.com/mchen88/cartly/internal/services"
	"github.com/mchen88/cartly/pkg/response"
)

// NotificationHandler exposes one scope of the notification store over
// HTTP. The same handler serves both the customer and the back-office
// variants; the route group decides which service instance it wraps.
type NotificationHandler struct {
	service *services.NotificationService
	hub     *notifications.Hub
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service *services.NotificationService, hub *notifications.Hub) (*NotificationHandler, error) {
	if service == nil {
		return nil, errors.New("notification handler: service is required")
	}
	return &NotificationHandler{service: service, hub: hub}, nil
}

type createNotificationRequest struct {
	UserID    string         `json:"user_id"`
	Type      string         `json:"type" validate:"required"`
	Category  string         `json:"category" validate:"required"`
	Priority  string         `json:"priority" validate:"omitempty,priority"`
	Title     string         `json:"title" validate:"required,max=255"`
	Message   string         `json:"message" validate:"required"`
	ActionURL string         `json:"action_url"`
	Data      map[string]any `json:"data"`
	ExpiresAt *time.Time     `json:"expires_at"`
}

type markReadRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

type deleteManyRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// List returns one page of the caller's notifications together with the
// unread badge count over the whole visible set.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := h.service.List(requestContext(c), userID, services.ListNotificationsInput{
		Page:       parseIntQuery(c, "page", 1),
		Limit:      parseIntQuery(c, "limit", 20),
		Category:   c.Query("category"),
		Priority:   c.Query("priority"),
		Type:       c.Query("type"),
		Search:     c.Query("search"),
		// Both spellings are accepted; older clients send the camelCase form.
		UnreadOnly: parseBoolQuery(c, "unread_only") || parseBoolQuery(c, "unreadOnly"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{
		"notifications": page.Notifications,
		"unread_count":  page.UnreadCount,
	}, response.NewMeta(page.Page, page.Limit, page.Total))
}

// Create persists a notification. Registered behind the admin gate in
// both scopes.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dto, err := h.service.Create(requestContext(c), services.CreateNotificationInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Category:  req.Category,
		Priority:  req.Priority,
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: req.ActionURL,
		Data:      req.Data,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// MarkRead transitions notifications to read: either the listed ids or,
// with {"all": true}, every unread record the caller can see. The
// response carries the number of records actually modified.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req markReadRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var (
		modified int64
		err      error
	)
	if req.All {
		modified, err = h.service.MarkAllRead(requestContext(c), userID)
	} else {
		modified, err = h.service.MarkRead(requestContext(c), userID, req.IDs)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modified_count": modified})
}

// Delete removes one notification. Deleting a record that is already
// gone, or that belongs to someone else, reports zero deletions.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	deleted, err := h.service.Delete(requestContext(c), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted_count": deleted})
}

// DeleteMany removes the listed notifications, silently skipping ids
// outside the caller's scope.
func (h *NotificationHandler) DeleteMany(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req deleteManyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	deleted, err := h.service.DeleteMany(requestContext(c), userID, req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted_count": deleted})
}

// Stream upgrades to a WebSocket carrying created/read/deleted events
// for the caller's scope. Polling remains the source of truth; the
// stream only nudges clients to refresh sooner.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.hub == nil {
		response.Error(c, errors.New("notification stream disabled"))
		return
	}

	h.hub.Serve(h.service.Scope().Name, userID, c.Writer, c.Request)
}
