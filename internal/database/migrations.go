package database

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
)

// NotificationTables maps each notification scope onto its own table.
var NotificationTables = []string{
	models.UserNotificationTable,
	models.AdminNotificationTable,
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Review{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.BlogPost{},
		&models.ContactMessage{},
	); err != nil {
		return err
	}

	for _, table := range NotificationTables {
		if err := db.Table(table).AutoMigrate(&models.Notification{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
		if err := ensureRecipientIndex(db, table); err != nil {
			return err
		}
	}

	return nil
}

// ensureRecipientIndex backs the paginated recency-ordered listing with a
// compound (user_id, created_at) index per notification table.
func ensureRecipientIndex(db *gorm.DB, table string) error {
	name := fmt.Sprintf("idx_%s_user_created", table)
	stmt := fmt.Sprintf("CREATE INDEX %s ON %s (user_id, created_at)", name, table)
	if err := db.Exec(stmt).Error; err != nil {
		// Re-running migrations hits "index already exists"; that is fine.
		if strings.Contains(strings.ToLower(err.Error()), "exist") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// SeedData ensures a back-office administrator account exists.
func SeedData(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		BaseModel: models.BaseModel{ID: "admin"},
		Email:     "admin@localhost",
		Password:  string(hash),
		Name:      "Administrator",
		Role:      models.RoleAdmin,
		IsActive:  true,
	}

	return db.Where(models.User{Role: models.RoleAdmin}).Attrs(admin).FirstOrCreate(&models.User{}).Error
}
