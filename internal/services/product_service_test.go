package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchen88/cartly/internal/database/testutil"
	"github.com/mchen88/cartly/internal/media"
	apperrors "github.com/mchen88/cartly/pkg/errors"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestProductCreateSlugifiesAndLists(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	products, err := NewProductService(db)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := products.Create(ctx, ProductInput{
		Name:  "Walnut Standing Desk",
		Price: floatPtr(349.99),
		Stock: intPtr(5),
	})
	require.NoError(t, err)
	require.Equal(t, "walnut-standing-desk", created.Slug)
	require.True(t, created.IsActive)

	_, err = products.Create(ctx, ProductInput{
		Name:     "Hidden Lamp",
		Price:    floatPtr(20),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	page, err := products.List(ctx, ListProductsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "walnut-standing-desk", page.Products[0].Slug)

	all, err := products.List(ctx, ListProductsInput{IncludeAll: true})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.Total)
}

func TestProductListPriceFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	products, err := NewProductService(db)
	require.NoError(t, err)
	ctx := context.Background()

	seedProduct(t, db, "cheap-mug", 8.50, 10)
	seedProduct(t, db, "mid-kettle", 45, 10)
	seedProduct(t, db, "dear-desk", 349.99, 10)

	page, err := products.List(ctx, ListProductsInput{MinPrice: floatPtr(10), MaxPrice: floatPtr(100)})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "mid-kettle", page.Products[0].Slug)
}

func TestProductCreateValidatesInput(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	products, err := NewProductService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = products.Create(ctx, ProductInput{Price: floatPtr(10)})
	require.Error(t, err)

	_, err = products.Create(ctx, ProductInput{Name: "Free Lunch", Price: floatPtr(0)})
	require.Error(t, err)

	_, err = products.Create(ctx, ProductInput{Name: "Backorder", Price: floatPtr(5), Stock: intPtr(-1)})
	require.Error(t, err)
}

func TestProductImageURLsResolvedAgainstMediaHost(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	resolver, err := media.NewHostedResolver("https://cdn.example.com/media/")
	require.NoError(t, err)
	products, err := NewProductService(db, WithImageResolver(resolver))
	require.NoError(t, err)
	ctx := context.Background()

	created, err := products.Create(ctx, ProductInput{
		Name:      "Oak Shelf",
		Price:     floatPtr(89),
		ImageURLs: []string{"shelves/oak-front.jpg", "https://images.example.org/oak-side.jpg"},
	})
	require.NoError(t, err)

	var stored []string
	require.NoError(t, json.Unmarshal(created.ImageURLs, &stored))
	require.Equal(t, []string{
		"https://cdn.example.com/media/shelves/oak-front.jpg",
		"https://images.example.org/oak-side.jpg",
	}, stored)

	_, err = products.Create(ctx, ProductInput{
		Name:      "Bad Imagery",
		Price:     floatPtr(10),
		ImageURLs: []string{"ftp://host/secret.jpg"},
	})
	require.Error(t, err)
}

func TestProductUpdateAndDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	products, err := NewProductService(db)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := products.Create(ctx, ProductInput{Name: "Pine Chair", Price: floatPtr(59), Stock: intPtr(4)})
	require.NoError(t, err)

	updated, err := products.Update(ctx, created.ID, ProductInput{Name: "Pine Armchair", Price: floatPtr(65)})
	require.NoError(t, err)

	reloaded, err := products.Get(ctx, updated.ID)
	require.NoError(t, err)
	require.Equal(t, "pine-armchair", reloaded.Slug)
	require.InDelta(t, 65, reloaded.Price, 0.001)

	require.NoError(t, products.Delete(ctx, created.ID))
	_, err = products.Get(ctx, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.ErrorIs(t, products.Delete(ctx, created.ID), apperrors.ErrNotFound)
}
