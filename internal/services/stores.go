package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// UserStore persists user accounts and the follow graph.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error)
	SetProfilePhoto(ctx context.Context, id primitive.ObjectID, url, key string) (*models.User, error)
	// Follow records follower -> target on both documents. Returns
	// *utils.ConflictError if the edge already exists.
	Follow(ctx context.Context, follower, target primitive.ObjectID) error
	Unfollow(ctx context.Context, follower, target primitive.ObjectID) error
}

// JournalStore persists journals with their embedded likes and comments.
// Mutations that take a viewer only match journals the viewer may see.
type JournalStore interface {
	Insert(ctx context.Context, j *models.Journal) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Journal, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error)
	ListPublic(ctx context.Context, limit int64) ([]models.Journal, error)
	UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, upd JournalUpdate) (*models.Journal, error)
	DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Journal, error)
	ToggleLike(ctx context.Context, id, viewer primitive.ObjectID) (*models.Journal, error)
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Journal, error)
	CountByUsers(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipient primitive.ObjectID, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, recipient primitive.ObjectID) error
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName    *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,max=2048"`
	Bio          *string `json:"bio" validate:"omitempty,max=200"`
	Location     *string `json:"location" validate:"omitempty,max=100"`
}

// JournalUpdate carries the editable journal fields; nil means unchanged.
type JournalUpdate struct {
	Title            *string   `json:"title" validate:"omitempty,max=200"`
	Location         *string   `json:"location"`
	Entry            *string   `json:"entry"`
	Tags             *[]string `json:"tags"`
	FriendsMentioned *[]string `json:"friendsMentioned"`
	Rating           *float64  `json:"rating" validate:"omitempty,gte=0,lte=5"`
	IsPublic         *bool     `json:"isPublic"`
}

// Empty reports whether the update changes nothing.
func (u JournalUpdate) Empty() bool {
	return u.Title == nil && u.Location == nil && u.Entry == nil && u.Tags == nil &&
		u.FriendsMentioned == nil && u.Rating == nil && u.IsPublic == nil
}

func parseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, utils.NewValidationError(field, "invalid %s", field)
	}
	return id, nil
}

// notFoundOr maps mongo.ErrNoDocuments to a NotFoundError for resource.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &utils.NotFoundError{Resource: resource}
	}
	return err
}

func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
