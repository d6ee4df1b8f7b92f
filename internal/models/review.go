package models

// Review is a customer rating for a product, one per user and product.
type Review struct {
	BaseModel

	ProductID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_product_user" json:"product_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user" json:"user_id"`
	Rating    int    `gorm:"not null" json:"rating"`
	Title     string `gorm:"type:varchar(255)" json:"title"`
	Body      string `gorm:"type:text" json:"body"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
