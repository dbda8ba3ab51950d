package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// StoreRepository implements application.StoreRepository using MongoDB.
type StoreRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewStoreRepository creates a new Mongo-backed store repository.
func NewStoreRepository(db *mongo.Database, collectionName string) *StoreRepository {
	return &StoreRepository{
		collection: db.Collection(collectionName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Insert は新しい ObjectID を採番して店舗を保存し、store.ID に書き戻す。
// slug の一意制約違反はそのまま返すので IsDuplicateSlug で判定すること。
func (r *StoreRepository) Insert(ctx context.Context, store *domain.Store) error {
	id := primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, storeDocument(*store, id)); err != nil {
		return err
	}
	store.ID = id.Hex()
	return nil
}

// UpdateOwned は _id と author を同時に条件へ含めた 1 回の UpdateOne で更新する。
// 所有者の確認と書き込みの間に割り込まれる余地をなくすため。
func (r *StoreRepository) UpdateOwned(ctx context.Context, id, requesterID string, update application.StoreUpdate) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return false, nil
	}
	result, err := r.collection.UpdateOne(ctx, ownedFilter(objectID, requesterID), updateDocument(update, r.now()))
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.NewNotFoundError("store", id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

func (r *StoreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *StoreRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.Store, error) {
	var doc StoreDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError("store", key)
	}
	if err != nil {
		return nil, err
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// FindByIDs は不正な ID を読み飛ばし、存在する店舗だけを返す。
func (r *StoreRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Store, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, objectID)
		}
	}
	if len(objectIDs) == 0 {
		return []domain.Store{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, opts)
}

func (r *StoreRepository) SlugsLike(ctx context.Context, base, excludeID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"slug": 1, "_id": 0})
	cursor, err := r.collection.Find(ctx, slugFilter(base, excludeID), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(docs))
	for _, doc := range docs {
		slugs = append(slugs, doc.Slug)
	}
	return slugs, nil
}

func (r *StoreRepository) List(ctx context.Context, skip, limit int) ([]domain.Store, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *StoreRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *StoreRepository) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	cursor, err := r.collection.Aggregate(ctx, tagCountPipeline())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make([]domain.TagCount, 0)
	for cursor.Next(ctx) {
		var doc tagCountDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		counts = append(counts, domain.TagCount{Tag: doc.Tag, Count: doc.Count})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *StoreRepository) FindByTag(ctx context.Context, tag string) ([]domain.Store, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	return r.find(ctx, tagFilter(tag), opts)
}

// TextSearch は $text インデックスを使い、textScore の降順 (同点は _id 昇順) で返す。
func (r *StoreRepository) TextSearch(ctx context.Context, query string, limit int) ([]domain.ScoredStore, error) {
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	hits := make([]domain.ScoredStore, 0)
	for cursor.Next(ctx) {
		var doc scoredStoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		hits = append(hits, domain.ScoredStore{Store: mapStoreDocument(doc.StoreDocument), Score: doc.Score})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

func (r *StoreRepository) GeoNear(ctx context.Context, lng, lat float64, maxDistanceMeters float64, limit int) ([]domain.NearbyStore, error) {
	cursor, err := r.collection.Aggregate(ctx, geoNearPipeline(lng, lat, maxDistanceMeters, limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stores := make([]domain.NearbyStore, 0)
	for cursor.Next(ctx) {
		var doc nearbyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stores = append(stores, mapNearbyDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *StoreRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Store, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stores := make([]domain.Store, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stores = append(stores, mapStoreDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

func ownedFilter(id primitive.ObjectID, author string) bson.M {
	return bson.M{"_id": id, "author": author}
}

// updateDocument は owner が変更できるフィールドだけを $set する。author は決して含めない。
func updateDocument(update application.StoreUpdate, now time.Time) bson.M {
	set := bson.M{
		"name":        update.Name,
		"slug":        update.Slug,
		"description": update.Description,
		"tags":        append([]string{}, update.Tags...),
		"updatedAt":   now,
	}
	if update.Location != nil {
		set["location"] = locationDocument(*update.Location)
	}
	if update.Photo != "" {
		set["photo"] = update.Photo
	}
	return bson.M{"$set": set}
}

func slugFilter(base, excludeID string) bson.M {
	filter := bson.M{"slug": primitive.Regex{Pattern: domain.SlugPattern(base)}}
	if objectID, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": objectID}
	}
	return filter
}

// tagFilter は tag が空なら「タグを 1 つ以上持つ店舗」を表す。
func tagFilter(tag string) bson.M {
	if tag == "" {
		return bson.M{"tags.0": bson.M{"$exists": true}}
	}
	return bson.M{"tags": tag}
}

func tagCountPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$tags"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// geoNearPipeline は球面距離 (メートル) で近い順に並べ、一覧表示に必要な項目だけ射影する。
func geoNearPipeline(lng, lat, maxDistanceMeters float64, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: domain.PointType},
				{Key: "coordinates", Value: bson.A{lng, lat}},
			}},
			{Key: "distanceField", Value: "distance"},
			{Key: "maxDistance", Value: maxDistanceMeters},
			{Key: "spherical", Value: true},
		}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.D{
			{Key: "slug", Value: 1},
			{Key: "name", Value: 1},
			{Key: "description", Value: 1},
			{Key: "location", Value: 1},
			{Key: "photo", Value: 1},
			{Key: "distance", Value: 1},
		}}},
	}
}
