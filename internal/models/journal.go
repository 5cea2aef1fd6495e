package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRating is reported for journals that were stored without a rating.
const DefaultRating = 4.5

// Journal represents a travel journal entry owned by one user
type Journal struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
	UserID           primitive.ObjectID   `bson:"user_id" json:"user"`
	Title            string               `bson:"title,omitempty" json:"title"`
	Location         string               `bson:"location" json:"location"`
	Entry            string               `bson:"entry" json:"entry"`
	Images           []string             `bson:"images" json:"images"`
	Tags             []string             `bson:"tags" json:"tags"`
	FriendsMentioned []string             `bson:"friends_mentioned" json:"friendsMentioned"`
	Likes            []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments         []Comment            `bson:"comments" json:"comments"`
	Rating           *float64             `bson:"rating,omitempty" json:"rating,omitempty"`
	IsPublic         bool                 `bson:"is_public" json:"isPublic"`
}

// Comment is embedded in Journal.Comments, newest first.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// DisplayTitle returns the stored title or one derived from the location.
func (j *Journal) DisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}
	return "Journey to " + j.Location
}

// DisplayRating returns the stored rating or DefaultRating.
func (j *Journal) DisplayRating() float64 {
	if j.Rating == nil {
		return DefaultRating
	}
	return *j.Rating
}

// LikedBy reports whether userID is in the like set.
func (j *Journal) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range j.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// JournalSummary is a journal as it appears in list views.
type JournalSummary struct {
	ID               primitive.ObjectID `json:"_id"`
	Title            string             `json:"title"`
	Location         string             `json:"location"`
	Images           []string           `json:"images"`
	ImageURLs        []string           `json:"imageUrls"`
	Entry            string             `json:"entry"`
	Tags             []string           `json:"tags"`
	FriendsMentioned []string           `json:"friendsMentioned"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	User             UserSummary        `json:"user"`
	Likes            int                `json:"likes"`
	Comments         int                `json:"comments"`
	Rating           float64            `json:"rating"`
	IsPublic         bool               `json:"isPublic"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	User      UserSummary        `json:"user"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

// JournalDetail is a single journal with author and commenters resolved.
type JournalDetail struct {
	ID               primitive.ObjectID `json:"_id"`
	Title            string             `json:"title"`
	Location         string             `json:"location"`
	Images           []string           `json:"images"`
	ImageURLs        []string           `json:"imageUrls"`
	Entry            string             `json:"entry"`
	Tags             []string           `json:"tags"`
	FriendsMentioned []string           `json:"friendsMentioned"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	User             UserSummary        `json:"user"`
	Likes            int                `json:"likes"`
	Liked            bool               `json:"liked"`
	Comments         []CommentView      `json:"comments"`
	CommentCount     int                `json:"commentCount"`
	Rating           float64            `json:"rating"`
	IsPublic         bool               `json:"isPublic"`
	ShareLink        string             `json:"shareLink,omitempty"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}
