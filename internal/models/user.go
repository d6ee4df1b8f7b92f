package models

// Roles assignable to a user account.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a storefront account, customer or back-office admin.
type User struct {
	BaseModel

	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Name     string `gorm:"type:varchar(255)" json:"name"`
	Role     string `gorm:"type:varchar(32);default:'customer';index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// IsAdmin reports whether the account carries the back-office role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
