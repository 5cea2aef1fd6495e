package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/validation"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// SocialService covers profiles and the follow graph.
type SocialService struct {
	users    UserStore
	journals JournalStore
	media    MediaStore
	cache    FeedCache
	notifier Notifier
	log      *zap.Logger
}

// NewSocialService wires the service. cache may be nil; it is invalidated
// on profile changes because feed entries embed author details.
func NewSocialService(users UserStore, journals JournalStore, media MediaStore, cache FeedCache, notifier Notifier, log *zap.Logger) *SocialService {
	if cache == nil {
		cache = noopFeedCache{}
	}
	return &SocialService{users: users, journals: journals, media: media, cache: cache, notifier: notifier, log: log}
}

func (s *SocialService) Profile(caller *models.User) models.PublicProfile {
	return caller.Public()
}

// User looks up another user's public profile.
func (s *SocialService) User(ctx context.Context, idHex string) (*models.PublicProfile, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

// UpdateProfile applies the non-empty fields of upd.
func (s *SocialService) UpdateProfile(ctx context.Context, caller *models.User, upd ProfileUpdate) (*models.PublicProfile, error) {
	upd = dropEmptyProfileFields(upd)
	if err := validation.Struct(upd); err != nil {
		return nil, err
	}
	if upd.Email != nil {
		email := utils.NormalizeEmail(*upd.Email)
		upd.Email = &email
	}

	u, err := s.users.UpdateProfile(ctx, caller.ID, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	p := u.Public()
	return &p, nil
}

// UpdateProfilePhoto points the profile at an already stored upload and
// removes the previous photo.
func (s *SocialService) UpdateProfilePhoto(ctx context.Context, caller *models.User, key string) (*models.PublicProfile, error) {
	u, err := s.users.SetProfilePhoto(ctx, caller.ID, s.media.URL(key), key)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	if old := caller.ProfilePhotoPath; old != "" && old != key {
		if err := s.media.Remove(ctx, old); err != nil {
			s.log.Warn("failed to remove previous profile photo", zap.String("user_id", caller.ID.Hex()), zap.String("key", old), zap.Error(err))
		}
	}
	p := u.Public()
	return &p, nil
}

func (s *SocialService) Follow(ctx context.Context, caller *models.User, targetHex string) error {
	target, err := s.followTarget(ctx, caller, targetHex)
	if err != nil {
		return err
	}
	if err := s.users.Follow(ctx, caller.ID, target); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, caller, models.Notification{
			RecipientID: target,
			Type:        models.NotificationFollow,
		})
	}
	return nil
}

// Unfollow removes the edge; unfollowing a user not followed succeeds.
func (s *SocialService) Unfollow(ctx context.Context, caller *models.User, targetHex string) error {
	target, err := s.followTarget(ctx, caller, targetHex)
	if err != nil {
		return err
	}
	return s.users.Unfollow(ctx, caller.ID, target)
}

func (s *SocialService) followTarget(ctx context.Context, caller *models.User, targetHex string) (primitive.ObjectID, error) {
	target, err := parseObjectID("id", targetHex)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if target == caller.ID {
		return primitive.NilObjectID, &utils.ValidationError{Field: "id", Message: "You cannot follow yourself"}
	}
	if _, err := s.users.FindByID(ctx, target); err != nil {
		return primitive.NilObjectID, err
	}
	return target, nil
}

// Following lists the users caller follows with their journal and follower counts.
func (s *SocialService) Following(ctx context.Context, caller *models.User) ([]models.FollowingEntry, error) {
	if len(caller.Following) == 0 {
		return []models.FollowingEntry{}, nil
	}
	users, err := s.users.FindByIDs(ctx, caller.Following)
	if err != nil {
		return nil, err
	}
	counts, err := s.journals.CountByUsers(ctx, caller.Following)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]models.FollowingEntry, 0, len(users))
	for _, id := range caller.Following {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, models.FollowingEntry{
			ID:            u.ID,
			FirstName:     u.FirstName,
			Email:         u.Email,
			ProfileImage:  u.ProfileImage,
			ProfilePhoto:  u.ProfilePhoto,
			Bio:           u.Bio,
			JournalCount:  counts[u.ID],
			FollowerCount: len(u.Followers),
		})
	}
	return out, nil
}

func dropEmptyProfileFields(upd ProfileUpdate) ProfileUpdate {
	keep := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		if v == "" {
			return nil
		}
		return &v
	}
	upd.FirstName = keep(upd.FirstName)
	upd.Email = keep(upd.Email)
	upd.ProfileImage = keep(upd.ProfileImage)
	upd.Bio = keep(upd.Bio)
	upd.Location = keep(upd.Location)
	return upd
}
