package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mchen88/cartly/internal/database/testutil"
)

func TestEnquiryRaisesAdminNotification(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	adminNotifs, err := NewNotificationService(db, AdminNotificationScope, nil)
	require.NoError(t, err)
	messages, err := NewMessageService(db, adminNotifs)
	require.NoError(t, err)
	ctx := context.Background()

	message, err := messages.Create(ctx, ContactMessageInput{
		Name:  "Frank",
		Email: "frank@example.com",
		Body:  "Where is my parcel?",
	})
	require.NoError(t, err)
	require.False(t, message.Handled)

	page, err := adminNotifs.List(ctx, "11111111-1111-4111-8111-111111111111", ListNotificationsInput{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Equal(t, "New enquiry from Frank", page.Notifications[0].Title)
	require.Equal(t, "messages", page.Notifications[0].Category)
}

func TestEnquiryPersistsAndWarnsWhenNotificationDrops(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	brokenScope := AdminNotificationScope
	brokenScope.Table = "missing_admin_notifications"
	broken, err := NewNotificationService(db, brokenScope, nil)
	require.NoError(t, err)

	messages, err := NewMessageService(db, broken)
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	messages.log = zap.New(core)

	message, err := messages.Create(context.Background(), ContactMessageInput{
		Name:  "Harriet",
		Email: "harriet@example.com",
		Body:  "Do you ship overseas?",
	})
	require.NoError(t, err)
	require.NotEmpty(t, message.ID)

	require.Equal(t, 1, logs.FilterMessage("enquiry notification dropped").Len())
}

func TestEnquiryValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	messages, err := NewMessageService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = messages.Create(ctx, ContactMessageInput{Email: "x@example.com", Body: "hi"})
	require.Error(t, err)
	_, err = messages.Create(ctx, ContactMessageInput{Name: "X", Body: "hi"})
	require.Error(t, err)
	_, err = messages.Create(ctx, ContactMessageInput{Name: "X", Email: "x@example.com"})
	require.Error(t, err)
}

func TestMarkHandledIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	messages, err := NewMessageService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	message, err := messages.Create(ctx, ContactMessageInput{Name: "Gail", Email: "gail@example.com", Body: "Bulk pricing?"})
	require.NoError(t, err)

	adminID := "22222222-2222-4222-8222-222222222222"
	handled, err := messages.MarkHandled(ctx, adminID, message.ID)
	require.NoError(t, err)
	require.True(t, handled.Handled)
	require.Equal(t, adminID, handled.HandledBy)
	require.NotNil(t, handled.HandledAt)
	firstHandledAt := *handled.HandledAt

	// Second call keeps the original handler and timestamp.
	again, err := messages.MarkHandled(ctx, "33333333-3333-4333-8333-333333333333", message.ID)
	require.NoError(t, err)
	require.Equal(t, adminID, again.HandledBy)
	require.Equal(t, firstHandledAt.Unix(), again.HandledAt.Unix())

	page, err := messages.List(ctx, ListMessagesInput{UnhandledOnly: true})
	require.NoError(t, err)
	require.Empty(t, page.Messages)
}
