package models

// Category groups products for storefront navigation.
type Category struct {
	BaseModel

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:text" json:"image_url"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`
}
