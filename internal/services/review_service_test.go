package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchen88/cartly/internal/database/testutil"
	"github.com/mchen88/cartly/internal/models"
)

func TestReviewAggregateTracksCreateAndDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	reviews, err := NewReviewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	product := seedProduct(t, db, "ceramic-vase", 42.0, 8)
	alice := seedCustomer(t, db)
	bob := models.User{Email: "bob@example.com", Password: "hashed", Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&bob).Error)

	_, err = reviews.Create(ctx, alice.ID, CreateReviewInput{ProductID: product.ID, Rating: 5, Body: "Lovely glaze."})
	require.NoError(t, err)
	second, err := reviews.Create(ctx, bob.ID, CreateReviewInput{ProductID: product.ID, Rating: 3, Body: "Smaller than pictured."})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, 2, reloaded.RatingCount)
	require.InDelta(t, 4.0, reloaded.RatingAverage, 0.001)

	require.NoError(t, reviews.Delete(ctx, bob.ID, second.ID))

	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, 1, reloaded.RatingCount)
	require.InDelta(t, 5.0, reloaded.RatingAverage, 0.001)
}

func TestReviewOnePerUserAndRatingBounds(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	reviews, err := NewReviewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	product := seedProduct(t, db, "wool-throw", 60.0, 5)
	user := seedCustomer(t, db)

	_, err = reviews.Create(ctx, user.ID, CreateReviewInput{ProductID: product.ID, Rating: 0})
	require.Error(t, err)
	_, err = reviews.Create(ctx, user.ID, CreateReviewInput{ProductID: product.ID, Rating: 6})
	require.Error(t, err)

	_, err = reviews.Create(ctx, user.ID, CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, user.ID, CreateReviewInput{ProductID: product.ID, Rating: 2})
	require.Error(t, err)
}

func TestReviewBodySanitised(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	reviews, err := NewReviewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	product := seedProduct(t, db, "glass-carafe", 28.0, 5)
	user := seedCustomer(t, db)

	review, err := reviews.Create(ctx, user.ID, CreateReviewInput{
		ProductID: product.ID,
		Rating:    4,
		Body:      `Nice <script>alert("x")</script><b>bold</b>`,
	})
	require.NoError(t, err)
	require.NotContains(t, review.Body, "<script>")
	require.Contains(t, review.Body, "<b>bold</b>")
}
