package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	"github.com/mchen88/cartly/internal/notifications"
	apperrors "github.com/mchen88/cartly/pkg/errors"
	"github.com/mchen88/cartly/pkg/metrics"
)

// NotificationScope parameterises the notification store: which table
// backs it, which types it accepts, whether priority drives list
// ordering, and how long read records are retained before the sweep
// removes them.
type NotificationScope struct {
	Name        string
	Table       string
	Types       []string
	UsePriority bool
	Retention   time.Duration
}

// UserNotificationScope is the customer-facing variant: recency-ordered,
// read records swept after seven days.
var UserNotificationScope = NotificationScope{
	Name:      "user",
	Table:     models.UserNotificationTable,
	Types:     []string{"order", "wishlist", "product", "system", "promotion"},
	Retention: 7 * 24 * time.Hour,
}

// AdminNotificationScope is the back-office variant: priority-then-recency
// ordering, no read-retention sweep.
var AdminNotificationScope = NotificationScope{
	Name:        "admin",
	Table:       models.AdminNotificationTable,
	Types:       []string{"info", "success", "warning", "error"},
	UsePriority: true,
}

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID        string         `json:"id"`
	UserID    *string        `json:"user_id"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Priority  string         `json:"priority,omitempty"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL string         `json:"action_url,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	ReadBy    string         `json:"read_by,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateNotificationInput defines attributes required to persist a notification.
// An empty UserID produces a broadcast record visible to every caller in scope.
type CreateNotificationInput struct {
	UserID    string
	Type      string
	Category  string
	Priority  string
	Title     string
	Message   string
	ActionURL string
	Data      map[string]any
	ExpiresAt *time.Time
}

// ListNotificationsInput defines filters for querying notifications.
type ListNotificationsInput struct {
	Page       int
	Limit      int
	Category   string
	Priority   string
	Type       string
	Search     string
	UnreadOnly bool
}

// NotificationPage bundles one page of notifications with the total and
// the unread count over the caller's entire visible set.
type NotificationPage struct {
	Notifications []NotificationDTO
	Page          int
	Limit         int
	Total         int64
	UnreadCount   int64
}

// NotificationService manages one scope of in-app notifications.
type NotificationService struct {
	db    *gorm.DB
	scope NotificationScope
	hub   *notifications.Hub
	now   func() time.Time
}

// NotificationOption customises a NotificationService.
type NotificationOption func(*NotificationService)

// WithNotificationClock overrides the clock, primarily for tests.
func WithNotificationClock(now func() time.Time) NotificationOption {
	return func(s *NotificationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewNotificationService constructs a NotificationService bound to a scope.
func NewNotificationService(db *gorm.DB, scope NotificationScope, hub *notifications.Hub, opts ...NotificationOption) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	if scope.Table == "" || len(scope.Types) == 0 {
		return nil, errors.New("notification service: scope is incomplete")
	}

	svc := &NotificationService{db: db, scope: scope, hub: hub, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Scope returns the scope this service is bound to.
func (s *NotificationService) Scope() NotificationScope {
	return s.scope
}

func (s *NotificationService) table(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.scope.Table)
}

// visible narrows a query to records the caller may see: their own or
// broadcast records, excluding anything already expired.
func (s *NotificationService) visible(q *gorm.DB, callerID string) *gorm.DB {
	return q.
		Where("(user_id = ? OR user_id IS NULL)", callerID).
		Where("(expires_at IS NULL OR expires_at > ?)", s.now().UTC())
}

// Create validates and persists a notification record.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	notificationType := strings.TrimSpace(input.Type)
	if !containsString(s.scope.Types, notificationType) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("type must be one of: %s", strings.Join(s.scope.Types, ", ")))
	}

	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	category := strings.TrimSpace(input.Category)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if message == "" {
		return nil, apperrors.NewBadRequest("message is required")
	}
	if category == "" {
		return nil, apperrors.NewBadRequest("category is required")
	}

	priority := strings.TrimSpace(input.Priority)
	if s.scope.UsePriority {
		priority = defaultIfEmpty(priority, models.PriorityMedium)
		if !models.ValidPriority(priority) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("priority must be one of: %s", strings.Join(models.NotificationPriorities, ", ")))
		}
	} else {
		priority = ""
	}

	now := s.now().UTC()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, apperrors.NewBadRequest("expires_at must lie in the future")
	}

	record := models.Notification{
		Type:      notificationType,
		Category:  category,
		Priority:  priority,
		Title:     title,
		Message:   message,
		ActionURL: strings.TrimSpace(input.ActionURL),
		ExpiresAt: input.ExpiresAt,
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	if userID := strings.TrimSpace(input.UserID); userID != "" {
		record.UserID = &userID
	}

	if input.Data != nil {
		data, err := json.Marshal(input.Data)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal data: %w", err)
		}
		record.Data = datatypes.JSON(data)
	}

	if err := s.table(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(s.scope.Name, notificationType).Inc()

	dto := s.mapNotification(record)
	s.publish(record.UserID, "notification.created", &dto, record.ID, 0)
	return &dto, nil
}

// List returns one page of visible notifications plus the total and the
// unread count over the caller's whole visible set, so clients can render
// a badge without fetching every page.
func (s *NotificationService) List(ctx context.Context, callerID string, input ListNotificationsInput) (*NotificationPage, error) {
	ctx = ensureContext(ctx)
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthorized
	}

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

	filtered := s.visible(s.table(ctx), callerID)
	if category := strings.TrimSpace(input.Category); category != "" {
		filtered = filtered.Where("category = ?", category)
	}
	if s.scope.UsePriority {
		if priority := strings.TrimSpace(input.Priority); priority != "" {
			if !models.ValidPriority(priority) {
				return nil, apperrors.NewBadRequest("unknown priority filter")
			}
			filtered = filtered.Where("priority = ?", priority)
		}
	}
	if typ := strings.TrimSpace(input.Type); typ != "" {
		if !containsString(s.scope.Types, typ) {
			return nil, apperrors.NewBadRequest("unknown type filter")
		}
		filtered = filtered.Where("type = ?", typ)
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		filtered = filtered.Where("(LOWER(title) LIKE ? OR LOWER(message) LIKE ?)", pattern, pattern)
	}
	if input.UnreadOnly {
		filtered = filtered.Where("is_read = ?", false)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("notification service: count notifications: %w", err)
	}

	var rows []models.Notification
	query := filtered.Session(&gorm.Session{}).Order(s.listOrder()).
		Limit(limit).
		Offset((page - 1) * limit)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	// The badge count covers the entire visible set, not the filtered page.
	unread, err := s.UnreadCount(ctx, callerID)
	if err != nil {
		return nil, err
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.mapNotification(row))
	}

	return &NotificationPage{
		Notifications: items,
		Page:          page,
		Limit:         limit,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

// UnreadCount counts unread, unexpired records visible to the caller.
func (s *NotificationService) UnreadCount(ctx context.Context, callerID string) (int64, error) {
	ctx = ensureContext(ctx)

	var unread int64
	err := s.visible(s.table(ctx), callerID).
		Where("is_read = ?", false).
		Count(&unread).Error
	if err != nil {
		return 0, fmt.Errorf("notification service: unread count: %w", err)
	}
	return unread, nil
}

// MarkRead transitions the given records to read, setting read_at in the
// same update. Records outside the caller's visible scope are skipped.
// Marking an already-read record again is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, callerID string, ids []string) (int64, error) {
	ctx = ensureContext(ctx)

	ids = normaliseIDs(ids)
	if len(ids) == 0 {
		return 0, apperrors.NewBadRequest("at least one notification id is required")
	}
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	result := s.visible(s.table(ctx), callerID).
		Where("id IN ?", ids).
		Where("is_read = ?", false).
		Updates(s.readUpdates(callerID))
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: mark read: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.publish(&callerID, "notification.read", nil, "", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// MarkAllRead transitions every unread, visible record to read and
// returns the number of records modified.
func (s *NotificationService) MarkAllRead(ctx context.Context, callerID string) (int64, error) {
	ctx = ensureContext(ctx)
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return 0, apperrors.ErrUnauthorized
	}

	result := s.visible(s.table(ctx), callerID).
		Where("is_read = ?", false).
		Updates(s.readUpdates(callerID))
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: mark all read: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.publish(&callerID, "notification.read_all", nil, "", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// Delete removes a single record if it is visible to the caller. A
// missing or already-deleted record counts as zero-effect success.
func (s *NotificationService) Delete(ctx context.Context, callerID, id string) (int64, error) {
	return s.DeleteMany(ctx, callerID, []string{id})
}

// DeleteMany removes the given records, silently excluding ids outside
// the caller's visible scope.
func (s *NotificationService) DeleteMany(ctx context.Context, callerID string, ids []string) (int64, error) {
	ctx = ensureContext(ctx)

	ids = normaliseIDs(ids)
	if len(ids) == 0 {
		return 0, apperrors.NewBadRequest("at least one notification id is required")
	}
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	result := s.table(ctx).
		Where("(user_id = ? OR user_id IS NULL)", callerID).
		Where("id IN ?", ids).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: delete notifications: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.publish(&callerID, "notification.deleted", nil, strings.Join(ids, ","), result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// SweepExpired physically removes records whose expiry has passed. They
// are already invisible to every query; this reclaims storage.
func (s *NotificationService) SweepExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.table(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: sweep expired: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsSwept.WithLabelValues(s.scope.Name, "expired").Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// SweepRead removes read records older than the scope's retention window.
// Scopes without a retention window keep read records indefinitely.
func (s *NotificationService) SweepRead(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	if s.scope.Retention <= 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().Add(-s.scope.Retention)
	result := s.table(ctx).
		Where("is_read = ?", true).
		Where("read_at IS NOT NULL AND read_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: sweep read: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsSwept.WithLabelValues(s.scope.Name, "retention").Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) readUpdates(callerID string) map[string]any {
	updates := map[string]any{
		"is_read": true,
		"read_at": s.now().UTC(),
	}
	if s.scope.UsePriority {
		updates["read_by"] = callerID
	}
	return updates
}

func (s *NotificationService) listOrder() string {
	if s.scope.UsePriority {
		return "CASE priority WHEN 'urgent' THEN 3 WHEN 'high' THEN 2 WHEN 'medium' THEN 1 ELSE 0 END DESC, created_at DESC"
	}
	return "created_at DESC"
}

func (s *NotificationService) publish(target *string, event string, dto *NotificationDTO, id string, modified int64) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(s.scope.Name, target, notifications.Event{
		Event:          event,
		Notification:   dto,
		NotificationID: id,
		ModifiedCount:  modified,
	})
}

func (s *NotificationService) mapNotification(row models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Category:  row.Category,
		Title:     row.Title,
		Message:   row.Message,
		ActionURL: row.ActionURL,
		Data:      decodeJSON(row.Data),
		IsRead:    row.IsRead,
		ReadAt:    row.ReadAt,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}
	if s.scope.UsePriority {
		dto.Priority = row.Priority
		dto.ReadBy = row.ReadBy
	}
	return dto
}

func validateIDs(ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return apperrors.NewBadRequest(fmt.Sprintf("invalid notification id %q", id))
		}
	}
	return nil
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
