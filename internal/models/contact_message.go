package models

import "time"

// ContactMessage is an inbound customer enquiry handled by admins.
type ContactMessage struct {
	BaseModel

	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Email     string     `gorm:"type:varchar(255);not null" json:"email"`
	Subject   string     `gorm:"type:varchar(255)" json:"subject"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	Handled   bool       `gorm:"default:false;index" json:"handled"`
	HandledBy string     `gorm:"type:uuid" json:"handled_by,omitempty"`
	HandledAt *time.Time `json:"handled_at,omitempty"`
}
