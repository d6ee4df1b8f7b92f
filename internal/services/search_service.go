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

const searchGroupLimit = 10

// SearchResult groups matches by entity.
type SearchResult struct {
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
	Posts      []models.BlogPost `json:"posts"`
}

// SearchService fans a free-text query out across the storefront's
// public entities, each group capped independently.
type SearchService struct {
	db *gorm.DB
}

// NewSearchService constructs a SearchService.
func NewSearchService(db *gorm.DB) (*SearchService, error) {
	if db == nil {
		return nil, errors.New("search service: db is required")
	}
	return &SearchService{db: db}, nil
}

// Search runs the fan-out. Queries shorter than two characters are
// rejected to keep the LIKE scans bounded.
func (s *SearchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	ctx = ensureContext(ctx)

	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, apperrors.NewBadRequest("search query must be at least 2 characters")
	}
	pattern := "%" + strings.ToLower(query) + "%"

	result := &SearchResult{
		Products:   []models.Product{},
		Categories: []models.Category{},
		Posts:      []models.BlogPost{},
	}

	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("created_at DESC").
		Limit(searchGroupLimit).
		Find(&result.Products).Error
	if err != nil {
		return nil, fmt.Errorf("search service: products: %w", err)
	}

	err = s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("name ASC").
		Limit(searchGroupLimit).
		Find(&result.Categories).Error
	if err != nil {
		return nil, fmt.Errorf("search service: categories: %w", err)
	}

	err = s.db.WithContext(ctx).
		Where("published = ?", true).
		Where("(LOWER(title) LIKE ? OR LOWER(body) LIKE ?)", pattern, pattern).
		Order("created_at DESC").
		Limit(searchGroupLimit).
		Find(&result.Posts).Error
	if err != nil {
		return nil, fmt.Errorf("search service: posts: %w", err)
	}

	return result, nil
}
