package models

import "time"

// BlogPost is a back-office authored article. Body HTML is sanitised
// before persisting.
type BlogPost struct {
	BaseModel

	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Excerpt     string     `gorm:"type:text" json:"excerpt"`
	Body        string     `gorm:"type:text" json:"body"`
	CoverURL    string     `gorm:"type:text" json:"cover_url"`
	AuthorID    string     `gorm:"type:uuid;index" json:"author_id"`
	Published   bool       `gorm:"default:false;index" json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
