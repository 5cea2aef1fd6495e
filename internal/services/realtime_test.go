package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/services"
	"github.com/AnshRaj112/travel-journal-backend/internal/testutil"
)

func TestHubDeliversToRecipientOnly(t *testing.T) {
	hub := services.NewHub(nil, zap.NewNop())
	alice, stopAlice := hub.Subscribe("alice")
	defer stopAlice()
	bob, stopBob := hub.Subscribe("bob")
	defer stopBob()

	require.NoError(t, hub.Publish(context.Background(), models.NotificationEvent{Type: "notification", RecipientID: "alice"}))

	select {
	case evt := <-alice:
		assert.Equal(t, "alice", evt.RecipientID)
	case <-time.After(time.Second):
		t.Fatal("alice got nothing")
	}
	select {
	case evt := <-bob:
		t.Fatalf("bob got %v", evt)
	default:
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := services.NewHub(nil, zap.NewNop())
	ch, stop := hub.Subscribe("alice")
	stop()
	stop()

	_, open := <-ch
	assert.False(t, open)
	hub.FanOut(models.NotificationEvent{RecipientID: "alice"})
}

func TestHubDropsWhenListenerIsSlow(t *testing.T) {
	hub := services.NewHub(nil, zap.NewNop())
	_, stop := hub.Subscribe("alice")
	defer stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.FanOut(models.NotificationEvent{RecipientID: "alice"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FanOut blocked on a full listener")
	}
}

func TestNotificationServiceListAndMarkRead(t *testing.T) {
	log := zap.NewNop()
	users := testutil.NewUserStore()
	store := testutil.NewNotificationStore()
	hub := services.NewHub(nil, log)
	svc := services.NewNotificationService(store, users, hub, log)
	ctx := context.Background()

	owner := testutil.SeedUser(t, users, "Ana", "ana@example.com")
	fan := testutil.SeedUser(t, users, "Ben", "ben@example.com")

	live, stop := svc.Subscribe(owner.ID)
	defer stop()

	svc.Notify(ctx, fan, models.Notification{RecipientID: owner.ID, Type: models.NotificationFollow})
	svc.Notify(ctx, owner, models.Notification{RecipientID: owner.ID, Type: models.NotificationFollow})

	select {
	case evt := <-live:
		assert.Equal(t, "Ben", evt.Notification.Actor.FirstName)
	case <-time.After(time.Second):
		t.Fatal("no realtime event")
	}

	list, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1, "self-actions are not recorded")
	assert.Equal(t, int64(1), list.Unread)
	assert.Equal(t, "Ben", list.Notifications[0].Actor.FirstName)

	require.Error(t, svc.MarkRead(ctx, fan.ID, list.Notifications[0].ID.Hex()), "only the recipient may mark it")
	require.NoError(t, svc.MarkRead(ctx, owner.ID, list.Notifications[0].ID.Hex()))

	list, err = svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, list.Unread)
	assert.True(t, list.Notifications[0].Read)
}

func TestNoopFeedCache(t *testing.T) {
	c := services.NewFeedCache(nil, time.Minute, zap.NewNop())
	c.Set(context.Background(), 0, []int{1})
	var out []int
	hit, _ := c.Get(context.Background(), &out)
	assert.False(t, hit)
	c.Invalidate(context.Background())
}
