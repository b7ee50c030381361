package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/kendall-kelly/private-messaging-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", nil)
	bob := testutil.CreateUser(t, db, "bob", nil)

	messages := NewMessageService(db, NewGormUserDirectory(db), MessageServiceOptions{})
	service := NewNotificationService(db, messages)

	aliceCaller := Caller{UserID: alice.ID}
	bobCaller := Caller{UserID: bob.ID}

	for _, title := range []string{"first", "second"} {
		_, err := messages.Create(ctx, aliceCaller, CreateMessageInput{ToUserName: "bob", Title: title, Content: "hi"})
		require.NoError(t, err)
	}

	page, err := service.List(ctx, bobCaller, PageRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.TotalCount)
	require.Len(t, page.Items, 2)

	empty, err := service.List(ctx, aliceCaller, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalCount)

	target := page.Items[0].ID

	t.Run("only the recipient can dismiss", func(t *testing.T) {
		err := service.Dismiss(ctx, aliceCaller, target)
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("unknown notification", func(t *testing.T) {
		err := service.Dismiss(ctx, bobCaller, uuid.New())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("dismiss hides the notification", func(t *testing.T) {
		require.NoError(t, service.Dismiss(ctx, bobCaller, target))

		page, err := service.List(ctx, bobCaller, PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalCount)
		assert.NotEqual(t, target, page.Items[0].ID)
	})

	t.Run("dismissing twice is a no-op", func(t *testing.T) {
		assert.NoError(t, service.Dismiss(ctx, bobCaller, target))
	})

	t.Run("invalid page", func(t *testing.T) {
		_, err := service.List(ctx, bobCaller, PageRequest{Skip: -1})
		assert.True(t, errors.Is(err, ErrValidation))
	})

	var stored []models.PrivateMessageNotification
	require.NoError(t, db.Unscoped().Find(&stored).Error)
	assert.Len(t, stored, 2, "dismissal keeps the row")
}
