package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/media"
	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
)

// ProductInput holds attributes for creating or updating a product.
type ProductInput struct {
	Name        string
	Description string
	Price       *float64
	CompareAt   *float64
	Stock       *int
	CategoryID  string
	ImageURLs   []string
	IsActive    *bool
}

// ListProductsInput defines catalog filters.
type ListProductsInput struct {
	Page         int
	Limit        int
	CategorySlug string
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	IncludeAll   bool // admin listing includes inactive products
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products []models.Product
	Page     int
	Limit    int
	Total    int64
}

// ProductService manages the catalog.
type ProductService struct {
	db       *gorm.DB
	resolver media.Resolver
}

// ProductOption customises a ProductService.
type ProductOption func(*ProductService)

// WithImageResolver resolves stored image references against the
// external media host before they are persisted.
func WithImageResolver(resolver media.Resolver) ProductOption {
	return func(s *ProductService) {
		s.resolver = resolver
	}
}

// NewProductService constructs a ProductService.
func NewProductService(db *gorm.DB, opts ...ProductOption) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	service := &ProductService{db: db}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

func (s *ProductService) resolveImageURLs(refs []string) ([]string, error) {
	if s.resolver == nil {
		return refs, nil
	}
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := s.resolver.Resolve(ref)
		if err != nil {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid image url %q", ref)).WithInternal(err)
		}
		resolved = append(resolved, u)
	}
	return resolved, nil
}

// List returns a filtered, paginated slice of the catalog.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ProductPage, error) {
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

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if !input.IncludeAll {
		query = query.Where("is_active = ?", true)
	}
	if categorySlug := strings.TrimSpace(input.CategorySlug); categorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", pattern, pattern)
	}
	if input.MinPrice != nil {
		query = query.Where("price >= ?", *input.MinPrice)
	}
	if input.MaxPrice != nil {
		query = query.Where("price <= ?", *input.MaxPrice)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("product service: count products: %w", err)
	}

	var rows []models.Product
	err := query.Session(&gorm.Session{}).
		Preload("Category").
		Order("products.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("product service: list products: %w", err)
	}

	return &ProductPage{Products: rows, Page: page, Limit: limit, Total: total}, nil
}

// GetBySlug returns one active product.
func (s *ProductService) GetBySlug(ctx context.Context, productSlug string) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", strings.TrimSpace(productSlug), true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: load product: %w", err)
	}
	return &product, nil
}

// Get returns one product by id regardless of active state.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: load product: %w", err)
	}
	return &product, nil
}

// Create persists a new product.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if input.Price == nil || *input.Price <= 0 {
		return nil, apperrors.NewBadRequest("price must be greater than zero")
	}

	product := models.Product{
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(input.Description),
		Price:       *input.Price,
		CategoryID:  strings.TrimSpace(input.CategoryID),
		IsActive:    true,
	}
	if input.CompareAt != nil {
		product.CompareAt = *input.CompareAt
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.NewBadRequest("stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if len(input.ImageURLs) > 0 {
		resolved, err := s.resolveImageURLs(input.ImageURLs)
		if err != nil {
			return nil, err
		}
		urls, err := json.Marshal(resolved)
		if err != nil {
			return nil, fmt.Errorf("product service: marshal image urls: %w", err)
		}
		product.ImageURLs = datatypes.JSON(urls)
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("product service: create product: %w", err)
	}
	return &product, nil
}

// Update applies changes to an existing product.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != product.Name {
		updates["name"] = name
		updates["slug"] = slug.Make(name)
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		updates["description"] = desc
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.NewBadRequest("price must be greater than zero")
		}
		updates["price"] = *input.Price
	}
	if input.CompareAt != nil {
		updates["compare_at"] = *input.CompareAt
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.NewBadRequest("stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	if categoryID := strings.TrimSpace(input.CategoryID); categoryID != "" {
		updates["category_id"] = categoryID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ImageURLs != nil {
		resolved, err := s.resolveImageURLs(input.ImageURLs)
		if err != nil {
			return nil, err
		}
		urls, err := json.Marshal(resolved)
		if err != nil {
			return nil, fmt.Errorf("product service: marshal image urls: %w", err)
		}
		updates["image_urls"] = datatypes.JSON(urls)
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("product service: update product: %w", err)
	}
	return product, nil
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("product service: delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
