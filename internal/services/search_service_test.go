package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mchen88/cartly/internal/database/testutil"
	"github.com/mchen88/cartly/internal/models"
)

func TestSearchFansOutAcrossEntities(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	search, err := NewSearchService(db)
	require.NoError(t, err)
	ctx := context.Background()

	seedProduct(t, db, "garden-bench", 210.0, 3)
	seedProduct(t, db, "kitchen-stool", 45.0, 6)

	require.NoError(t, db.Create(&models.Category{Name: "Garden", Slug: "garden", IsActive: true}).Error)

	now := time.Now()
	require.NoError(t, db.Create(&models.BlogPost{
		Title:       "Garden makeover ideas",
		Slug:        "garden-makeover-ideas",
		Body:        "Start with the bench.",
		Published:   true,
		PublishedAt: &now,
	}).Error)

	result, err := search.Search(ctx, "garden")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	require.Len(t, result.Categories, 1)
	require.Len(t, result.Posts, 1)
	require.Equal(t, "garden-bench", result.Products[0].Slug)
}

func TestSearchRejectsShortQueries(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	search, err := NewSearchService(db)
	require.NoError(t, err)

	_, err = search.Search(context.Background(), "g")
	require.Error(t, err)
	_, err = search.Search(context.Background(), "  ")
	require.Error(t, err)
}

func TestSearchSkipsHiddenContent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	search, err := NewSearchService(db)
	require.NoError(t, err)
	ctx := context.Background()

	hidden := seedProduct(t, db, "attic-chest", 150.0, 1)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	require.NoError(t, db.Create(&models.BlogPost{
		Title: "Attic draft",
		Slug:  "attic-draft",
		Body:  "unpublished",
	}).Error)

	result, err := search.Search(ctx, "attic")
	require.NoError(t, err)
	require.Empty(t, result.Products)
	require.Empty(t, result.Posts)
}
