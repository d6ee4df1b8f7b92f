package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
)

// CartService manages per-user shopping carts.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs a CartService.
func NewCartService(db *gorm.DB) (*CartService, error) {
	if db == nil {
		return nil, errors.New("cart service: db is required")
	}
	return &CartService{db: db}, nil
}

// Get returns the user's cart, creating an empty one on first use.
func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	ctx = ensureContext(ctx)

	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart service: load cart: %w", err)
	}

	cart = models.Cart{UserID: userID}
	if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("cart service: create cart: %w", err)
	}
	return &cart, nil
}

// AddItem puts a product into the cart or raises its quantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	ctx = ensureContext(ctx)

	if quantity < 1 {
		return nil, apperrors.NewBadRequest("quantity must be at least 1")
	}
	productID = strings.TrimSpace(productID)

	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("cart service: load product: %w", err)
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		First(&item).Error
	switch {
	case err == nil:
		newQuantity := item.Quantity + quantity
		if newQuantity > product.Stock {
			return nil, apperrors.ErrOutOfStock
		}
		if err := s.db.WithContext(ctx).Model(&item).Update("quantity", newQuantity).Error; err != nil {
			return nil, fmt.Errorf("cart service: update quantity: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > product.Stock {
			return nil, apperrors.ErrOutOfStock
		}
		item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, fmt.Errorf("cart service: add item: %w", err)
		}
	default:
		return nil, fmt.Errorf("cart service: load item: %w", err)
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets the quantity of a cart line; zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error) {
	ctx = ensureContext(ctx)

	if quantity < 0 {
		return nil, apperrors.NewBadRequest("quantity cannot be negative")
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("cart service: load item: %w", err)
	}

	if quantity == 0 {
		if err := s.db.WithContext(ctx).Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("cart service: remove item: %w", err)
		}
		return s.Get(ctx, userID)
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", item.ProductID).First(&product).Error; err != nil {
		return nil, fmt.Errorf("cart service: load product: %w", err)
	}
	if quantity > product.Stock {
		return nil, apperrors.ErrOutOfStock
	}

	if err := s.db.WithContext(ctx).Model(&item).Update("quantity", quantity).Error; err != nil {
		return nil, fmt.Errorf("cart service: update quantity: %w", err)
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes one line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error) {
	return s.UpdateItem(ctx, userID, itemID, 0)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("cart service: clear cart: %w", err)
	}
	return nil
}
