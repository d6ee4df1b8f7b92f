package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchen88/cartly/internal/database/testutil"
)

func TestCategorySlugDerivedAndOverridable(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	categories, err := NewCategoryService(db)
	require.NoError(t, err)
	ctx := context.Background()

	derived, err := categories.Create(ctx, CategoryInput{Name: "Home Office"})
	require.NoError(t, err)
	require.Equal(t, "home-office", derived.Slug)

	overridden, err := categories.Create(ctx, CategoryInput{Name: "Garden & Outdoor", Slug: "garden"})
	require.NoError(t, err)
	require.Equal(t, "garden", overridden.Slug)

	updated, err := categories.Update(ctx, overridden.ID, CategoryInput{Name: "Garden & Outdoor", Slug: "outdoor-living"})
	require.NoError(t, err)

	reloaded, err := categories.GetBySlug(ctx, "outdoor-living")
	require.NoError(t, err)
	require.Equal(t, updated.ID, reloaded.ID)
}
