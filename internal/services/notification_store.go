package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

type MongoNotificationStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoNotificationStore(db *mongo.Database, timeout time.Duration) *MongoNotificationStore {
	return &MongoNotificationStore{coll: db.Collection(database.NotificationsCollection), timeout: timeout}
}

func (s *MongoNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *MongoNotificationStore) ListForRecipient(ctx context.Context, recipient primitive.ObjectID, limit int64) ([]models.Notification, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, bson.M{"recipient_id": recipient}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return out, nil
}

func (s *MongoNotificationStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()
	return s.coll.CountDocuments(ctx, bson.M{"recipient_id": recipient, "read": false})
}

func (s *MongoNotificationStore) MarkRead(ctx context.Context, id, recipient primitive.ObjectID) error {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipient},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return &utils.NotFoundError{Resource: "notification"}
	}
	return nil
}
