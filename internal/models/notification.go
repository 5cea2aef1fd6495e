package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification is stored one document per event in the notifications collection.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient"`
	ActorID     primitive.ObjectID  `bson:"actor_id" json:"actorId"`
	Type        NotificationType    `bson:"type" json:"type"`
	JournalID   *primitive.ObjectID `bson:"journal_id,omitempty" json:"journalId,omitempty"`
	CommentText string              `bson:"comment_text,omitempty" json:"commentText,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
}

// NotificationView is a notification with the actor resolved.
type NotificationView struct {
	ID          primitive.ObjectID  `json:"_id"`
	Type        NotificationType    `json:"type"`
	Actor       UserSummary         `json:"actor"`
	JournalID   *primitive.ObjectID `json:"journalId,omitempty"`
	CommentText string              `json:"commentText,omitempty"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// NotificationEvent is the realtime payload pushed to connected clients.
type NotificationEvent struct {
	Type         string           `json:"type"`
	RecipientID  string           `json:"recipient_id"`
	Notification NotificationView `json:"notification"`
}
