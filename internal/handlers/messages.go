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

// MessageHandler exposes the public contact form and the admin inbox.
type MessageHandler struct {
	messages *services.MessageService
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *services.MessageService) (*MessageHandler, error) {
	if messages == nil {
		return nil, errors.New("message handler: service is required")
	}
	return &MessageHandler{messages: messages}, nil
}

type contactMessageRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=255"`
	Body    string `json:"body" validate:"required"`
}

// Create records an enquiry from the public contact form.
func (h *MessageHandler) Create(c *gin.Context) {
	var req contactMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.messages.Create(requestContext(c), services.ContactMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// List returns enquiries for the back office.
func (h *MessageHandler) List(c *gin.Context) {
	page, err := h.messages.List(requestContext(c), services.ListMessagesInput{
		Page:          parseIntQuery(c, "page", 1),
		Limit:         parseIntQuery(c, "limit", 20),
		UnhandledOnly: parseBoolQuery(c, "unhandled_only"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Messages, response.NewMeta(page.Page, page.Limit, page.Total))
}

// MarkHandled records which admin resolved the enquiry.
func (h *MessageHandler) MarkHandled(c *gin.Context) {
	adminID := c.GetString(middleware.CtxUserIDKey)
	message, err := h.messages.MarkHandled(requestContext(c), adminID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, message)
}
