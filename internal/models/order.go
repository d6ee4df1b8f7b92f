package models

import "gorm.io/datatypes"

// Order statuses. Transitions are pending -> paid -> shipped -> delivered,
// with cancelled reachable from pending or paid.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses enumerates every valid order status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Order is a checkout snapshot. Item prices are copied from the product
// at checkout time so later catalog edits do not rewrite history.
type Order struct {
	BaseModel

	UserID   string         `gorm:"type:uuid;not null;index:idx_orders_user_created" json:"user_id"`
	Number   string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"number"`
	Status   string         `gorm:"type:varchar(32);default:'pending';index" json:"status"`
	Subtotal float64        `gorm:"not null" json:"subtotal"`
	Shipping datatypes.JSON `json:"shipping_address"`
	Items    []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// OrderItem is a priced product line captured at checkout.
type OrderItem struct {
	BaseModel

	OrderID     string  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   string  `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string  `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if status == s {
			return true
		}
	}
	return false
}
