package models

// Cart holds a customer's pending selection, one active cart per user.
type Cart struct {
	BaseModel

	UserID string     `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem is a single product line within a cart.
type CartItem struct {
	BaseModel

	CartID    string   `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID string   `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
