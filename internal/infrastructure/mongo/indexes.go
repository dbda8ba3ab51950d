package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes は起動時に必要なインデックスを作成する。既存の同一定義は no-op。
func EnsureIndexes(ctx context.Context, db *mongo.Database, storeCollection, userCollection string) error {
	if _, err := db.Collection(storeCollection).Indexes().CreateMany(ctx, storeIndexes()); err != nil {
		return err
	}
	_, err := db.Collection(userCollection).Indexes().CreateMany(ctx, userIndexes())
	return err
}

func storeIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("name_description_text"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
		{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("tags")},
		{Keys: bson.D{{Key: "created", Value: -1}}, Options: options.Index().SetName("created_desc")},
		{Keys: bson.D{{Key: "author", Value: 1}}, Options: options.Index().SetName("author")},
	}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
	}
}

// IsDuplicateSlug は slug の一意制約違反かどうかを判定する。
func IsDuplicateSlug(err error) bool {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return false
	}
	return strings.Contains(err.Error(), "slug")
}
