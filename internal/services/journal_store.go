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
)

// MongoJournalStore is the JournalStore backed by the journals collection.
type MongoJournalStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoJournalStore(db *mongo.Database, timeout time.Duration) *MongoJournalStore {
	return &MongoJournalStore{coll: db.Collection(database.JournalsCollection), timeout: timeout}
}

func (s *MongoJournalStore) Insert(ctx context.Context, j *models.Journal) error {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, j); err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

func (s *MongoJournalStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Journal, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var j models.Journal
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		return nil, notFoundOr(err, "journal")
	}
	return &j, nil
}

func (s *MongoJournalStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	return s.find(ctx, bson.M{"user_id": userID}, 0)
}

func (s *MongoJournalStore) ListPublic(ctx context.Context, limit int64) ([]models.Journal, error) {
	return s.find(ctx, bson.M{"is_public": true}, limit)
}

func (s *MongoJournalStore) find(ctx context.Context, filter bson.M, limit int64) ([]models.Journal, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find journals: %w", err)
	}
	defer cursor.Close(ctx)

	journals := []models.Journal{}
	if err := cursor.All(ctx, &journals); err != nil {
		return nil, fmt.Errorf("decode journals: %w", err)
	}
	return journals, nil
}

func (s *MongoJournalStore) UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, upd JournalUpdate) (*models.Journal, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id, "user_id": owner}, journalUpdateDoc(upd, time.Now().UTC()))
}

func (s *MongoJournalStore) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Journal, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var j models.Journal
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id, "user_id": owner}).Decode(&j); err != nil {
		return nil, notFoundOr(err, "journal")
	}
	return &j, nil
}

func (s *MongoJournalStore) ToggleLike(ctx context.Context, id, viewer primitive.ObjectID) (*models.Journal, error) {
	return s.findOneAndUpdate(ctx, visibleTo(id, viewer), likeToggleUpdate(viewer))
}

func (s *MongoJournalStore) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Journal, error) {
	update := bson.M{"$push": bson.M{"comments": bson.M{
		"$each":     bson.A{c},
		"$position": 0,
	}}}
	return s.findOneAndUpdate(ctx, visibleTo(id, c.UserID), update)
}

func (s *MongoJournalStore) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*models.Journal, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var j models.Journal
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&j); err != nil {
		return nil, notFoundOr(err, "journal")
	}
	return &j, nil
}

func (s *MongoJournalStore) CountByUsers(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	cursor, err := s.coll.Aggregate(ctx, journalCountPipeline(userIDs))
	if err != nil {
		return nil, fmt.Errorf("count journals: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		UserID primitive.ObjectID `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode journal counts: %w", err)
	}
	for _, r := range rows {
		counts[r.UserID] = r.Count
	}
	return counts, nil
}

// visibleTo matches journal id if it is public or owned by viewer.
func visibleTo(id, viewer primitive.ObjectID) bson.M {
	return bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"is_public": true},
			bson.M{"user_id": viewer},
		},
	}
}

// likeToggleUpdate removes viewer from likes if present, otherwise appends it,
// in a single pipeline update.
func likeToggleUpdate(viewer primitive.ObjectID) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{viewer, likes}}}},
				{Key: "then", Value: bson.D{{Key: "$setDifference", Value: bson.A{likes, bson.A{viewer}}}}},
				{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{viewer}}}}},
			}}}},
		}}},
	}
}

func journalCountPipeline(userIDs []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: bson.D{{Key: "$in", Value: userIDs}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// journalUpdateDoc builds the $set document for the non-nil fields of upd.
// Callers normalise tags and friends before passing them in.
func journalUpdateDoc(upd JournalUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Entry != nil {
		set["entry"] = *upd.Entry
	}
	if upd.Tags != nil {
		set["tags"] = *upd.Tags
	}
	if upd.FriendsMentioned != nil {
		set["friends_mentioned"] = *upd.FriendsMentioned
	}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.IsPublic != nil {
		set["is_public"] = *upd.IsPublic
	}
	return bson.M{"$set": set}
}
