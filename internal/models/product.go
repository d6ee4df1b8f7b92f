package models

import "gorm.io/datatypes"

// Product is a purchasable catalog entry. Images live on the external
// media host; only their URLs are stored here. RatingAverage and
// RatingCount are denormalised from reviews and recomputed on every
// review write.
type Product struct {
	BaseModel

	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	CompareAt   float64        `json:"compare_at_price,omitempty"`
	Stock       int            `gorm:"default:0" json:"stock"`
	ImageURLs   datatypes.JSON `json:"image_urls"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`

	CategoryID string    `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	RatingAverage float64 `gorm:"default:0" json:"rating_average"`
	RatingCount   int     `gorm:"default:0" json:"rating_count"`
}
