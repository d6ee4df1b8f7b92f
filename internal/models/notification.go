package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tables backing the two notification scopes.
const (
	UserNotificationTable  = "user_notifications"
	AdminNotificationTable = "admin_notifications"
)

// Notification priorities, admin scope only.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// NotificationPriorities enumerates priorities in ascending urgency.
var NotificationPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Notification is an in-app notification record. The same shape backs
// both the user_notifications and admin_notifications tables; the
// notification service binds it to one table per scope.
//
// A nil UserID means the record is a broadcast, visible to every
// authorised caller in its scope. ReadAt is set if and only if IsRead
// is true. A record whose ExpiresAt lies in the past is invisible to
// every query even before the maintenance sweep physically removes it.
type Notification struct {
	BaseModel

	UserID    *string        `gorm:"type:uuid;index" json:"user_id"`
	Type      string         `gorm:"type:varchar(64);not null" json:"type"`
	Category  string         `gorm:"type:varchar(128);index" json:"category"`
	Priority  string         `gorm:"type:varchar(32);default:'medium'" json:"priority,omitempty"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	ActionURL string         `gorm:"type:text" json:"action_url,omitempty"`
	Data      datatypes.JSON `json:"data,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
	ReadBy string     `gorm:"type:uuid" json:"read_by,omitempty"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
}

// ValidPriority reports whether p is a known notification priority.
func ValidPriority(p string) bool {
	for _, priority := range NotificationPriorities {
		if priority == p {
			return true
		}
	}
	return false
}
