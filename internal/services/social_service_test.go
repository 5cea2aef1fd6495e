package services_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/services"
	"github.com/AnshRaj112/travel-journal-backend/internal/testutil"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

type socialFixture struct {
	svc           *services.SocialService
	users         *testutil.UserStore
	journals      *testutil.JournalStore
	media         *testutil.MediaStore
	notifications *testutil.NotificationStore
	cache         *countingCache
}

func newSocialFixture(t *testing.T) *socialFixture {
	t.Helper()
	log := zap.NewNop()
	f := &socialFixture{
		users:         testutil.NewUserStore(),
		journals:      testutil.NewJournalStore(),
		media:         testutil.NewMediaStore(),
		notifications: testutil.NewNotificationStore(),
		cache:         &countingCache{},
	}
	notifier := services.NewNotificationService(f.notifications, f.users, services.NewHub(nil, log), log)
	f.svc = services.NewSocialService(f.users, f.journals, f.media, f.cache, notifier, log)
	return f
}

func TestFollowUnfollowSymmetry(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	a := testutil.SeedUser(t, f.users, "Ana", "ana@example.com")
	b := testutil.SeedUser(t, f.users, "Ben", "ben@example.com")

	require.NoError(t, f.svc.Follow(ctx, a, b.ID.Hex()))
	a, b = testutil.Reload(t, f.users, a), testutil.Reload(t, f.users, b)
	assert.Equal(t, []primitive.ObjectID{b.ID}, a.Following)
	assert.Equal(t, []primitive.ObjectID{a.ID}, b.Followers)

	notes := f.notifications.All()
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFollow, notes[0].Type)
	assert.Equal(t, b.ID, notes[0].RecipientID)

	err := f.svc.Follow(ctx, a, b.ID.Hex())
	var ce *utils.ConflictError
	assert.True(t, errors.As(err, &ce), "second follow conflicts, got %v", err)

	require.NoError(t, f.svc.Unfollow(ctx, a, b.ID.Hex()))
	a, b = testutil.Reload(t, f.users, a), testutil.Reload(t, f.users, b)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)

	assert.NoError(t, f.svc.Unfollow(ctx, a, b.ID.Hex()), "unfollow is idempotent")
}

func TestFollowRejects(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	a := testutil.SeedUser(t, f.users, "Ana", "ana@example.com")

	var ve *utils.ValidationError
	assert.True(t, errors.As(f.svc.Follow(ctx, a, a.ID.Hex()), &ve))
	assert.True(t, errors.As(f.svc.Unfollow(ctx, a, a.ID.Hex()), &ve))
	assert.True(t, errors.As(f.svc.Follow(ctx, a, "zzz"), &ve))

	var nf *utils.NotFoundError
	assert.True(t, errors.As(f.svc.Follow(ctx, a, primitive.NewObjectID().Hex()), &nf))
	assert.True(t, errors.As(f.svc.Unfollow(ctx, a, primitive.NewObjectID().Hex()), &nf))
}

func TestFollowingListCounts(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	a := testutil.SeedUser(t, f.users, "Ana", "ana@example.com")
	b := testutil.SeedUser(t, f.users, "Ben", "ben@example.com")
	c := testutil.SeedUser(t, f.users, "Cai", "cai@example.com")

	require.NoError(t, f.svc.Follow(ctx, a, b.ID.Hex()))
	require.NoError(t, f.svc.Follow(ctx, a, c.ID.Hex()))
	require.NoError(t, f.svc.Follow(ctx, c, b.ID.Hex()))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.journals.Insert(ctx, &models.Journal{UserID: b.ID, Location: "x", Entry: "y"}))
	}

	list, err := f.svc.Following(ctx, testutil.Reload(t, f.users, a))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, int64(3), list[0].JournalCount)
	assert.Equal(t, 2, list[0].FollowerCount)

	assert.Equal(t, c.ID, list[1].ID)
	assert.Equal(t, int64(0), list[1].JournalCount)
	assert.Equal(t, 1, list[1].FollowerCount)

	empty, err := f.svc.Following(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateProfile(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	a := testutil.SeedUser(t, f.users, "Ana", "ana@example.com")
	testutil.SeedUser(t, f.users, "Ben", "ben@example.com")

	bio := "Slow traveller"
	blank := "  "
	email := " ANA.NEW@example.com "
	p, err := f.svc.UpdateProfile(ctx, a, services.ProfileUpdate{Bio: &bio, FirstName: &blank, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Slow traveller", p.Bio)
	assert.Equal(t, "Ana", p.FirstName, "blank fields are ignored")
	assert.Equal(t, "ana.new@example.com", p.Email)
	assert.Equal(t, 1, f.cache.invalidations, "feed entries embed the author")

	taken := "ben@example.com"
	_, err = f.svc.UpdateProfile(ctx, a, services.ProfileUpdate{Email: &taken})
	var ce *utils.ConflictError
	assert.True(t, errors.As(err, &ce))

	longBio := strings.Repeat("a", 201)
	_, err = f.svc.UpdateProfile(ctx, a, services.ProfileUpdate{Bio: &longBio})
	var ve *utils.ValidationError
	assert.True(t, errors.As(err, &ve))

	bad := "nope"
	_, err = f.svc.UpdateProfile(ctx, a, services.ProfileUpdate{Email: &bad})
	assert.True(t, errors.As(err, &ve))
}

func TestUpdateProfilePhotoReplacesOld(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	a := testutil.SeedUser(t, f.users, "Ana", "ana@example.com")

	first, err := f.media.Save(ctx, "one.png", bytes.NewReader(testutil.PNG), int64(len(testutil.PNG)), "image/png")
	require.NoError(t, err)
	p, err := f.svc.UpdateProfilePhoto(ctx, a, first)
	require.NoError(t, err)
	assert.Equal(t, f.media.URL(first), p.ProfilePhoto)
	assert.Equal(t, p.ProfilePhoto, p.ProfileImage)

	second, err := f.media.Save(ctx, "two.png", bytes.NewReader(testutil.PNG), int64(len(testutil.PNG)), "image/png")
	require.NoError(t, err)
	_, err = f.svc.UpdateProfilePhoto(ctx, testutil.Reload(t, f.users, a), second)
	require.NoError(t, err)

	assert.Equal(t, 2, f.cache.invalidations)

	_, ok := f.media.Get(first)
	assert.False(t, ok, "previous photo removed")
	_, ok = f.media.Get(second)
	assert.True(t, ok)
}

func TestPublicProfileLookup(t *testing.T) {
	f := newSocialFixture(t)
	a := testutil.SeedUser(t, f.users, "Ana", "ana@example.com")

	p, err := f.svc.User(context.Background(), a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, 0, p.FollowerCount)

	_, err = f.svc.User(context.Background(), primitive.NewObjectID().Hex())
	var nf *utils.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
