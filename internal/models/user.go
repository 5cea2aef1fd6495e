package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultBio is assigned to new accounts.
const DefaultBio = "Travel enthusiast sharing adventures around the world"

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	FirstName string `bson:"first_name" json:"firstName"`
	Email     string `bson:"email" json:"email"`
	Password  string `bson:"password" json:"-"` // Don't return password in JSON

	// ProfilePhoto and ProfileImage hold the same URL; older clients read one, newer the other.
	ProfilePhoto     string `bson:"profile_photo,omitempty" json:"profilePhoto,omitempty"`
	ProfileImage     string `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	ProfilePhotoPath string `bson:"profile_photo_path,omitempty" json:"-"`

	Bio      string `bson:"bio" json:"bio"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`

	Following []primitive.ObjectID `bson:"following" json:"following"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
}

// UserSummary is the author block embedded in journal, comment and notification views.
type UserSummary struct {
	ID           primitive.ObjectID `json:"_id"`
	FirstName    string             `json:"firstName"`
	Email        string             `json:"email"`
	ProfileImage string             `json:"profileImage,omitempty"`
	ProfilePhoto string             `json:"profilePhoto,omitempty"`
}

// PublicProfile is a user as returned by the profile endpoints.
type PublicProfile struct {
	ID             primitive.ObjectID   `json:"_id"`
	FirstName      string               `json:"firstName"`
	Email          string               `json:"email"`
	ProfileImage   string               `json:"profileImage,omitempty"`
	ProfilePhoto   string               `json:"profilePhoto,omitempty"`
	Bio            string               `json:"bio"`
	Location       string               `json:"location,omitempty"`
	Following      []primitive.ObjectID `json:"following"`
	Followers      []primitive.ObjectID `json:"followers"`
	FollowingCount int                  `json:"followingCount"`
	FollowerCount  int                  `json:"followerCount"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// FollowingEntry is one row of the following list.
type FollowingEntry struct {
	ID            primitive.ObjectID `json:"_id"`
	FirstName     string             `json:"firstName"`
	Email         string             `json:"email"`
	ProfileImage  string             `json:"profileImage,omitempty"`
	ProfilePhoto  string             `json:"profilePhoto,omitempty"`
	Bio           string             `json:"bio"`
	JournalCount  int64              `json:"journalCount"`
	FollowerCount int                `json:"followerCount"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		FirstName:    u.FirstName,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		ProfilePhoto: u.ProfilePhoto,
	}
}

func (u *User) Public() PublicProfile {
	following := u.Following
	if following == nil {
		following = []primitive.ObjectID{}
	}
	followers := u.Followers
	if followers == nil {
		followers = []primitive.ObjectID{}
	}
	return PublicProfile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		Email:          u.Email,
		ProfileImage:   u.ProfileImage,
		ProfilePhoto:   u.ProfilePhoto,
		Bio:            u.Bio,
		Location:       u.Location,
		Following:      following,
		Followers:      followers,
		FollowingCount: len(following),
		FollowerCount:  len(followers),
		CreatedAt:      u.CreatedAt,
	}
}

// IsFollowing reports whether u has an outgoing edge to target.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}
