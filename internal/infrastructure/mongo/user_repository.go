package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// UserRepository implements application.UserRepository using MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewUserRepository creates a new Mongo-backed user repository.
func NewUserRepository(db *mongo.Database, collectionName string) *UserRepository {
	return &UserRepository{
		collection: db.Collection(collectionName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var doc UserDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, err
	}
	user := mapUserDocument(doc)
	return &user, nil
}

// AddToSet は $addToSet で 1 件追加する。ユーザーが未作成なら profile から upsert する。
func (r *UserRepository) AddToSet(ctx context.Context, profile domain.User, storeID string) (*domain.User, error) {
	objectID, err := primitive.ObjectIDFromHex(storeID)
	if err != nil {
		return nil, domain.NewNotFoundError("store", storeID)
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return r.findOneAndUpdate(ctx, profile.ID, addHeartUpdate(profile, objectID, r.now()), opts)
}

// Remove は $pull で 1 件だけ取り除く。他の要素には触れない。
func (r *UserRepository) Remove(ctx context.Context, userID, storeID string) (*domain.User, error) {
	objectID, err := primitive.ObjectIDFromHex(storeID)
	if err != nil {
		return nil, domain.NewNotFoundError("store", storeID)
	}
	update := bson.M{"$pull": bson.M{"hearts": objectID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.findOneAndUpdate(ctx, userID, update, opts)
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, userID string, update bson.M, opts *options.FindOneAndUpdateOptions) (*domain.User, error) {
	var doc UserDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError("user", userID)
	}
	if err != nil {
		return nil, err
	}
	user := mapUserDocument(doc)
	return &user, nil
}

// addHeartUpdate は email が空のときは書き込まない (部分ユニークインデックスの対象外にする)。
func addHeartUpdate(profile domain.User, storeID primitive.ObjectID, now time.Time) bson.M {
	onInsert := bson.M{"created": now}
	if profile.Name != "" {
		onInsert["name"] = profile.Name
	}
	if profile.Email != "" {
		onInsert["email"] = profile.Email
	}
	return bson.M{
		"$addToSet":    bson.M{"hearts": storeID},
		"$setOnInsert": onInsert,
	}
}
