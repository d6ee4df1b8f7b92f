package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
	"github.com/mchen88/cartly/pkg/logger"
)

// ContactMessageInput holds an inbound enquiry.
type ContactMessageInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// ListMessagesInput defines filters for enquiry listings.
type ListMessagesInput struct {
	Page          int
	Limit         int
	UnhandledOnly bool
}

// MessagePage is one page of enquiry results.
type MessagePage struct {
	Messages []models.ContactMessage
	Page     int
	Limit    int
	Total    int64
}

// MessageService manages customer enquiries. New enquiries raise an
// admin notification so the back office hears about them promptly.
type MessageService struct {
	db                 *gorm.DB
	adminNotifications *NotificationService
	now                func() time.Time
	log                *zap.Logger
}

// NewMessageService constructs a MessageService. The notification
// service may be nil, which silences the fan-out.
func NewMessageService(db *gorm.DB, adminNotifications *NotificationService) (*MessageService, error) {
	if db == nil {
		return nil, errors.New("message service: db is required")
	}
	return &MessageService{
		db:                 db,
		adminNotifications: adminNotifications,
		now:                time.Now,
		log:                logger.WithModule("messages"),
	}, nil
}

// Create records an enquiry from the public contact form.
func (s *MessageService) Create(ctx context.Context, input ContactMessageInput) (*models.ContactMessage, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	body := strings.TrimSpace(input.Body)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if body == "" {
		return nil, apperrors.NewBadRequest("message body is required")
	}

	message := models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(input.Subject),
		Body:    body,
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("message service: create message: %w", err)
	}

	if s.adminNotifications != nil {
		_, err := s.adminNotifications.Create(ctx, CreateNotificationInput{
			Type:      "info",
			Category:  "messages",
			Priority:  models.PriorityMedium,
			Title:     "New enquiry from " + name,
			Message:   defaultIfEmpty(message.Subject, "No subject"),
			ActionURL: "/admin/messages/" + message.ID,
			Data:      map[string]any{"message_id": message.ID},
		})
		if err != nil {
			s.log.Warn("enquiry notification dropped",
				zap.String("message_id", message.ID), zap.Error(err))
		}
	}
	return &message, nil
}

// List returns enquiries for the back office, newest first.
func (s *MessageService) List(ctx context.Context, input ListMessagesInput) (*MessagePage, error) {
	ctx = ensureContext(ctx)

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := s.db.WithContext(ctx).Model(&models.ContactMessage{})
	if input.UnhandledOnly {
		query = query.Where("handled = ?", false)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("message service: count messages: %w", err)
	}

	var rows []models.ContactMessage
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("message service: list messages: %w", err)
	}

	return &MessagePage{Messages: rows, Page: page, Limit: limit, Total: total}, nil
}

// MarkHandled records which admin resolved an enquiry. Marking an
// already-handled message again is a no-op.
func (s *MessageService) MarkHandled(ctx context.Context, adminID, messageID string) (*models.ContactMessage, error) {
	ctx = ensureContext(ctx)

	var message models.ContactMessage
	if err := s.db.WithContext(ctx).Where("id = ?", messageID).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("message service: load message: %w", err)
	}

	if message.Handled {
		return &message, nil
	}

	now := s.now().UTC()
	updates := map[string]any{
		"handled":    true,
		"handled_by": adminID,
		"handled_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&message).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("message service: mark handled: %w", err)
	}

	message.Handled = true
	message.HandledBy = adminID
	message.HandledAt = &now
	return &message, nil
}
