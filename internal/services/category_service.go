package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
)

// CategoryInput holds attributes for creating or updating a category.
// Slug, when set, overrides the name-derived slug.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
	IsActive    *bool
}

// CategoryService manages catalog categories.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db}, nil
}

// List returns categories, optionally including inactive ones.
func (s *CategoryService) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.Category
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	return rows, nil
}

// GetBySlug returns one active category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	err := s.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", strings.TrimSpace(categorySlug), true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}
	return &category, nil
}

// Create persists a new category with a slug derived from its name.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	categorySlug := strings.TrimSpace(input.Slug)
	if categorySlug == "" {
		categorySlug = slug.Make(name)
	}

	category := models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("category service: create category: %w", err)
	}
	return &category, nil
}

// Update applies changes to an existing category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		updates["name"] = name
		updates["slug"] = slug.Make(name)
	}
	if override := strings.TrimSpace(input.Slug); override != "" {
		updates["slug"] = override
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		updates["description"] = desc
	}
	if url := strings.TrimSpace(input.ImageURL); url != "" {
		updates["image_url"] = url
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return &category, nil
	}

	if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("category service: update category: %w", err)
	}
	return &category, nil
}

// Delete removes a category. Products keep their category_id; the
// storefront simply stops resolving it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("category service: delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
