package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
	"github.com/mchen88/cartly/pkg/logger"
	"github.com/mchen88/cartly/pkg/metrics"
)

// allowedStatusTransitions encodes the order state machine.
var allowedStatusTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:      {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// ListOrdersInput defines filters for order listings.
type ListOrdersInput struct {
	Page   int
	Limit  int
	Status string
}

// OrderPage is one page of order results.
type OrderPage struct {
	Orders []models.Order
	Page   int
	Limit  int
	Total  int64
}

// OrderService manages checkout and order lifecycle. Lifecycle events
// fan out as notifications: customers hear about their own orders, the
// back office hears about new ones.
type OrderService struct {
	db                 *gorm.DB
	userNotifications  *NotificationService
	adminNotifications *NotificationService
	log                *zap.Logger
}

// NewOrderService constructs an OrderService. Either notification
// service may be nil, which simply silences that side.
func NewOrderService(db *gorm.DB, userNotifications, adminNotifications *NotificationService) (*OrderService, error) {
	if db == nil {
		return nil, errors.New("order service: db is required")
	}
	return &OrderService{
		db:                 db,
		userNotifications:  userNotifications,
		adminNotifications: adminNotifications,
		log:                logger.WithModule("orders"),
	}, nil
}

// Checkout turns the user's cart into an order: prices are snapshotted,
// stock is decremented, and the cart is emptied, all in one transaction.
func (s *OrderService) Checkout(ctx context.Context, userID string, shipping map[string]any) (*models.Order, error) {
	ctx = ensureContext(ctx)

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Preload("Items").Preload("Items.Product").
			Where("user_id = ?", userID).
			First(&cart).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewBadRequest("cart is empty")
			}
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return apperrors.NewBadRequest("cart is empty")
		}

		order = models.Order{
			UserID: userID,
			Number: newOrderNumber(),
			Status: models.OrderStatusPending,
		}

		for _, item := range cart.Items {
			if item.Product == nil || !item.Product.IsActive {
				return apperrors.NewBadRequest("cart contains an unavailable product")
			}

			// Guarded decrement so two concurrent checkouts cannot
			// oversell the same stock.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("decrement stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrOutOfStock
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				UnitPrice:   item.Product.Price,
				Quantity:    item.Quantity,
			})
			order.Subtotal += item.Product.Price * float64(item.Quantity)
		}

		if shipping != nil {
			data, err := json.Marshal(shipping)
			if err != nil {
				return fmt.Errorf("marshal shipping address: %w", err)
			}
			order.Shipping = datatypes.JSON(data)
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("order service: checkout: %w", err)
	}

	metrics.OrdersPlaced.Inc()
	s.notifyPlaced(ctx, &order)
	return &order, nil
}

// ListForUser returns the caller's own orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string, input ListOrdersInput) (*OrderPage, error) {
	return s.list(ctx, input, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

// ListAll returns every order, for the back office.
func (s *OrderService) ListAll(ctx context.Context, input ListOrdersInput) (*OrderPage, error) {
	return s.list(ctx, input, nil)
}

func (s *OrderService) list(ctx context.Context, input ListOrdersInput, scope func(*gorm.DB) *gorm.DB) (*OrderPage, error) {
	ctx = ensureContext(ctx)

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if scope != nil {
		query = scope(query)
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		if !models.ValidOrderStatus(status) {
			return nil, apperrors.NewBadRequest("unknown order status filter")
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("order service: count orders: %w", err)
	}

	var rows []models.Order
	err := query.Session(&gorm.Session{}).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("order service: list orders: %w", err)
	}

	return &OrderPage{Orders: rows, Page: page, Limit: limit, Total: total}, nil
}

// GetForUser returns one of the caller's orders.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID string) (*models.Order, error) {
	ctx = ensureContext(ctx)

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("order service: load order: %w", err)
	}
	return &order, nil
}

// UpdateStatus moves an order along the state machine and notifies the
// customer of the change.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	ctx = ensureContext(ctx)

	status = strings.TrimSpace(status)
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.NewBadRequest("unknown order status")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("order service: load order: %w", err)
	}

	if order.Status == status {
		return &order, nil
	}
	if !containsString(allowedStatusTransitions[order.Status], status) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.db.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("order service: update status: %w", err)
	}
	order.Status = status

	s.notifyStatus(ctx, &order)
	return &order, nil
}

func (s *OrderService) notifyPlaced(ctx context.Context, order *models.Order) {
	if s.userNotifications != nil {
		_, err := s.userNotifications.Create(ctx, CreateNotificationInput{
			UserID:    order.UserID,
			Type:      "order",
			Category:  "orders",
			Title:     "Order placed",
			Message:   fmt.Sprintf("Your order %s has been received.", order.Number),
			ActionURL: "/account/orders/" + order.ID,
			Data:      map[string]any{"order_id": order.ID, "status": order.Status},
		})
		if err != nil {
			s.log.Warn("order placement notification dropped",
				zap.String("order", order.Number), zap.Error(err))
		}
	}
	if s.adminNotifications != nil {
		_, err := s.adminNotifications.Create(ctx, CreateNotificationInput{
			Type:      "info",
			Category:  "orders",
			Priority:  models.PriorityHigh,
			Title:     "New order " + order.Number,
			Message:   fmt.Sprintf("Order %s placed for %.2f.", order.Number, order.Subtotal),
			ActionURL: "/admin/orders/" + order.ID,
			Data:      map[string]any{"order_id": order.ID},
		})
		if err != nil {
			s.log.Warn("back-office order notification dropped",
				zap.String("order", order.Number), zap.Error(err))
		}
	}
}

func (s *OrderService) notifyStatus(ctx context.Context, order *models.Order) {
	if s.userNotifications == nil {
		return
	}
	_, err := s.userNotifications.Create(ctx, CreateNotificationInput{
		UserID:    order.UserID,
		Type:      "order",
		Category:  "orders",
		Title:     "Order " + order.Status,
		Message:   fmt.Sprintf("Your order %s is now %s.", order.Number, order.Status),
		ActionURL: "/account/orders/" + order.ID,
		Data:      map[string]any{"order_id": order.ID, "status": order.Status},
	})
	if err != nil {
		s.log.Warn("order status notification dropped",
			zap.String("order", order.Number), zap.String("status", order.Status), zap.Error(err))
	}
}

func newOrderNumber() string {
	return "CL-" + strings.ToUpper(uuid.NewString()[:8])
}
