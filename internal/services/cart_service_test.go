package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchen88/cartly/internal/database/testutil"
	"github.com/mchen88/cartly/internal/models"
)

func TestCartAddMergeAndUpdate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	carts, err := NewCartService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedCustomer(t, db)
	product := seedProduct(t, db, "linen-cushion", 24.5, 10)

	cart, err := carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 2, cart.Items[0].Quantity)

	// Adding the same product merges into the existing line.
	cart, err = carts.AddItem(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = carts.UpdateItem(ctx, user.ID, cart.Items[0].ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, cart.Items[0].Quantity)

	// Quantity zero removes the line.
	cart, err = carts.UpdateItem(ctx, user.ID, cart.Items[0].ID, 0)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestCartRejectsInsufficientStock(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	carts, err := NewCartService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedCustomer(t, db)
	product := seedProduct(t, db, "velvet-chair", 199.0, 2)

	_, err = carts.AddItem(ctx, user.ID, product.ID, 3)
	require.Error(t, err)

	_, err = carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	// Merged quantity may not exceed stock either.
	_, err = carts.AddItem(ctx, user.ID, product.ID, 1)
	require.Error(t, err)
}

func TestCartScopedToOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	carts, err := NewCartService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedCustomer(t, db)
	product := seedProduct(t, db, "jute-rug", 75.0, 4)
	cart, err := carts.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	other := models.User{Email: "carol@example.com", Password: "hashed", Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	_, err = carts.UpdateItem(ctx, other.ID, cart.Items[0].ID, 3)
	require.Error(t, err)

	require.NoError(t, carts.Clear(ctx, user.ID))
	cart, err = carts.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}
