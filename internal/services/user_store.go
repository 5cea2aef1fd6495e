package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// MongoUserStore is the UserStore backed by the users collection.
type MongoUserStore struct {
	coll         *mongo.Collection
	timeout      time.Duration
	transactions bool
	log          *zap.Logger
}

func NewMongoUserStore(db *mongo.Database, timeout time.Duration, transactions bool, log *zap.Logger) *MongoUserStore {
	return &MongoUserStore{
		coll:         db.Collection(database.UsersCollection),
		timeout:      timeout,
		transactions: transactions,
		log:          log,
	}
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &utils.ConflictError{Message: "User already exists"}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": utils.NormalizeEmail(email)})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	var u models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

func (s *MongoUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	return s.updateOne(ctx, id, profileUpdateDoc(upd, time.Now().UTC()))
}

func (s *MongoUserStore) SetProfilePhoto(ctx context.Context, id primitive.ObjectID, url, key string) (*models.User, error) {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{
		"profile_photo":      url,
		"profile_image":      url,
		"profile_photo_path": key,
		"updated_at":         time.Now().UTC(),
	}})
}

func (s *MongoUserStore) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &utils.ConflictError{Message: "Email already in use"}
		}
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

// profileUpdateDoc builds the $set document for the non-nil fields of upd.
func profileUpdateDoc(upd ProfileUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.Email != nil {
		set["email"] = utils.NormalizeEmail(*upd.Email)
	}
	if upd.ProfileImage != nil {
		set["profile_image"] = *upd.ProfileImage
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	return bson.M{"$set": set}
}

func (s *MongoUserStore) Follow(ctx context.Context, follower, target primitive.ObjectID) error {
	return s.withEdgeWrites(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		// Matching on following != target makes the already-following check part of the write.
		res, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": follower, "following": bson.M{"$ne": target}},
			bson.M{"$addToSet": bson.M{"following": target}, "$set": bson.M{"updated_at": now}},
		)
		if err != nil {
			return fmt.Errorf("add following edge: %w", err)
		}
		if res.MatchedCount == 0 {
			return &utils.ConflictError{Message: "Already following this user"}
		}

		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": target},
			bson.M{"$addToSet": bson.M{"followers": follower}, "$set": bson.M{"updated_at": now}},
		); err != nil {
			s.compensate(ctx, bson.M{"_id": follower}, bson.M{"$pull": bson.M{"following": target}})
			return fmt.Errorf("add follower edge: %w", err)
		}
		return nil
	})
}

func (s *MongoUserStore) Unfollow(ctx context.Context, follower, target primitive.ObjectID) error {
	return s.withEdgeWrites(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		res, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": follower},
			bson.M{"$pull": bson.M{"following": target}, "$set": bson.M{"updated_at": now}},
		)
		if err != nil {
			return fmt.Errorf("remove following edge: %w", err)
		}

		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": target},
			bson.M{"$pull": bson.M{"followers": follower}, "$set": bson.M{"updated_at": now}},
		); err != nil {
			if res.ModifiedCount > 0 {
				s.compensate(ctx, bson.M{"_id": follower}, bson.M{"$addToSet": bson.M{"following": target}})
			}
			return fmt.Errorf("remove follower edge: %w", err)
		}
		return nil
	})
}

// withEdgeWrites runs the two follow-graph writes inside a transaction when enabled.
func (s *MongoUserStore) withEdgeWrites(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := opContext(ctx, s.timeout)
	defer cancel()

	if !s.transactions {
		return fn(ctx)
	}

	sess, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// compensate reverts the first edge write after the second failed. Inside a
// transaction the abort already does that.
func (s *MongoUserStore) compensate(ctx context.Context, filter, update bson.M) {
	if s.transactions {
		return
	}
	if _, err := s.coll.UpdateOne(context.WithoutCancel(ctx), filter, update); err != nil {
		s.log.Error("follow graph left asymmetric; compensation failed",
			zap.Any("filter", filter), zap.Error(err))
	}
}
