package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
)

// CreateReviewInput holds attributes for a product review.
type CreateReviewInput struct {
	ProductID string
	Rating    int
	Title     string
	Body      string
}

// ReviewService manages product reviews and keeps the denormalised
// rating aggregate on the product in step with them.
type ReviewService struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB) (*ReviewService, error) {
	if db == nil {
		return nil, errors.New("review service: db is required")
	}
	return &ReviewService{db: db, sanitizer: bluemonday.UGCPolicy()}, nil
}

// ListForProduct returns reviews for a product, newest first.
func (s *ReviewService) ListForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	ctx = ensureContext(ctx)

	var rows []models.Review
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("review service: list reviews: %w", err)
	}
	return rows, nil
}

// Create persists a review, one per user and product, and recomputes
// the product's rating aggregate.
func (s *ReviewService) Create(ctx context.Context, userID string, input CreateReviewInput) (*models.Review, error) {
	ctx = ensureContext(ctx)

	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewBadRequest("rating must be between 1 and 5")
	}
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return nil, apperrors.NewBadRequest("product_id is required")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("review service: load product: %w", err)
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Body:      s.sanitizer.Sanitize(strings.TrimSpace(input.Body)),
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.New("REVIEW_EXISTS", "You have already reviewed this product", apperrors.ErrConflict.StatusCode)
		}
		return nil, fmt.Errorf("review service: create review: %w", err)
	}

	if err := s.recomputeAggregate(ctx, productID); err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes the caller's review and refreshes the aggregate.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	ctx = ensureContext(ctx)

	var review models.Review
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", reviewID, userID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("review service: load review: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return fmt.Errorf("review service: delete review: %w", err)
	}
	return s.recomputeAggregate(ctx, review.ProductID)
}

func (s *ReviewService) recomputeAggregate(ctx context.Context, productID string) error {
	var agg struct {
		Average float64
		Count   int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("review service: aggregate ratings: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"rating_average": agg.Average,
			"rating_count":   agg.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("review service: store aggregate: %w", err)
	}
	return nil
}
