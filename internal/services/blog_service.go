package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/models"
	apperrors "github.com/mchen88/cartly/pkg/errors"
)

// BlogPostInput holds attributes for creating or updating a post.
type BlogPostInput struct {
	Title     string
	Excerpt   string
	Body      string
	CoverURL  string
	Published *bool
}

// ListBlogInput defines filters for blog listings.
type ListBlogInput struct {
	Page       int
	Limit      int
	IncludeAll bool // admin listing includes drafts
}

// BlogPage is one page of blog results.
type BlogPage struct {
	Posts []models.BlogPost
	Page  int
	Limit int
	Total int64
}

// BlogService manages back-office authored articles.
type BlogService struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewBlogService constructs a BlogService.
func NewBlogService(db *gorm.DB) (*BlogService, error) {
	if db == nil {
		return nil, errors.New("blog service: db is required")
	}
	return &BlogService{db: db, sanitizer: bluemonday.UGCPolicy(), now: time.Now}, nil
}

// List returns published posts, or all posts for the back office.
func (s *BlogService) List(ctx context.Context, input ListBlogInput) (*BlogPage, error) {
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

	query := s.db.WithContext(ctx).Model(&models.BlogPost{})
	if !input.IncludeAll {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("blog service: count posts: %w", err)
	}

	var rows []models.BlogPost
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("blog service: list posts: %w", err)
	}

	return &BlogPage{Posts: rows, Page: page, Limit: limit, Total: total}, nil
}

// GetBySlug returns one published post.
func (s *BlogService) GetBySlug(ctx context.Context, postSlug string) (*models.BlogPost, error) {
	ctx = ensureContext(ctx)

	var post models.BlogPost
	err := s.db.WithContext(ctx).
		Where("slug = ? AND published = ?", strings.TrimSpace(postSlug), true).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("blog service: load post: %w", err)
	}
	return &post, nil
}

// Create persists a post authored by the given admin.
func (s *BlogService) Create(ctx context.Context, authorID string, input BlogPostInput) (*models.BlogPost, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewBadRequest("body is required")
	}

	post := models.BlogPost{
		Title:    title,
		Slug:     slug.Make(title),
		Excerpt:  strings.TrimSpace(input.Excerpt),
		Body:     s.sanitizer.Sanitize(body),
		CoverURL: strings.TrimSpace(input.CoverURL),
		AuthorID: authorID,
	}
	if input.Published != nil && *input.Published {
		post.Published = true
		now := s.now().UTC()
		post.PublishedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("blog service: create post: %w", err)
	}
	return &post, nil
}

// Update applies changes to an existing post.
func (s *BlogService) Update(ctx context.Context, id string, input BlogPostInput) (*models.BlogPost, error) {
	ctx = ensureContext(ctx)

	var post models.BlogPost
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("blog service: load post: %w", err)
	}

	updates := map[string]any{}
	if title := strings.TrimSpace(input.Title); title != "" && title != post.Title {
		updates["title"] = title
		updates["slug"] = slug.Make(title)
	}
	if excerpt := strings.TrimSpace(input.Excerpt); excerpt != "" {
		updates["excerpt"] = excerpt
	}
	if body := strings.TrimSpace(input.Body); body != "" {
		updates["body"] = s.sanitizer.Sanitize(body)
	}
	if cover := strings.TrimSpace(input.CoverURL); cover != "" {
		updates["cover_url"] = cover
	}
	if input.Published != nil {
		updates["published"] = *input.Published
		if *input.Published && post.PublishedAt == nil {
			updates["published_at"] = s.now().UTC()
		}
	}
	if len(updates) == 0 {
		return &post, nil
	}

	if err := s.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("blog service: update post: %w", err)
	}
	return &post, nil
}

// Delete removes a post.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BlogPost{})
	if result.Error != nil {
		return fmt.Errorf("blog service: delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
