package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// LocationDocument は GeoJSON Point と住所を保持する埋め込みドキュメント。
// 2dsphere インデックスは type/coordinates の組を前提とする。
type LocationDocument struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
	Address     string     `bson:"address"`
}

// StoreDocument は MongoDB 上での店舗スキーマを Go 構造体として表現したもの。
type StoreDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Tags        []string           `bson:"tags"`
	Location    LocationDocument   `bson:"location"`
	Photo       string             `bson:"photo,omitempty"`
	Author      string             `bson:"author"`
	Created     time.Time          `bson:"created"`
	UpdatedAt   *time.Time         `bson:"updatedAt,omitempty"`
}

// scoredStoreDocument は $text 検索結果に textScore を付与したもの。
type scoredStoreDocument struct {
	StoreDocument `bson:",inline"`
	Score         float64 `bson:"score"`
}

// nearbyDocument は $geoNear の射影結果。
type nearbyDocument struct {
	Slug        string           `bson:"slug"`
	Name        string           `bson:"name"`
	Description string           `bson:"description"`
	Location    LocationDocument `bson:"location"`
	Photo       string           `bson:"photo"`
	Distance    float64          `bson:"distance"`
}

// tagCountDocument は $group で集計したタグ件数。
type tagCountDocument struct {
	Tag   string `bson:"_id"`
	Count int    `bson:"count"`
}

// UserDocument はお気に入り集合を持つユーザー。_id は認証基盤の subject をそのまま使う。
type UserDocument struct {
	ID      string               `bson:"_id"`
	Email   string               `bson:"email,omitempty"`
	Name    string               `bson:"name,omitempty"`
	Hearts  []primitive.ObjectID `bson:"hearts"`
	Created *time.Time           `bson:"created,omitempty"`
}

func locationDocument(loc domain.Location) LocationDocument {
	return LocationDocument{
		Type:        domain.PointType,
		Coordinates: loc.Coordinates,
		Address:     loc.Address,
	}
}

func mapLocationDocument(doc LocationDocument) domain.Location {
	return domain.Location{Type: doc.Type, Coordinates: doc.Coordinates, Address: doc.Address}
}

func storeDocument(store domain.Store, id primitive.ObjectID) StoreDocument {
	doc := StoreDocument{
		ID:          id,
		Name:        store.Name,
		Slug:        store.Slug,
		Description: store.Description,
		Tags:        append([]string{}, store.Tags...),
		Location:    locationDocument(store.Location),
		Photo:       store.Photo,
		Author:      store.Author,
		Created:     store.Created,
	}
	if !store.UpdatedAt.IsZero() {
		updated := store.UpdatedAt
		doc.UpdatedAt = &updated
	}
	return doc
}

func mapStoreDocument(doc StoreDocument) domain.Store {
	updatedAt := doc.Created
	if doc.UpdatedAt != nil {
		updatedAt = *doc.UpdatedAt
	}
	return domain.Store{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Slug:        doc.Slug,
		Description: doc.Description,
		Tags:        append([]string{}, doc.Tags...),
		Location:    mapLocationDocument(doc.Location),
		Photo:       doc.Photo,
		Author:      doc.Author,
		Created:     doc.Created,
		UpdatedAt:   updatedAt,
	}
}

func mapNearbyDocument(doc nearbyDocument) domain.NearbyStore {
	return domain.NearbyStore{
		Slug:        doc.Slug,
		Name:        doc.Name,
		Description: doc.Description,
		Location:    mapLocationDocument(doc.Location),
		Photo:       doc.Photo,
		Distance:    doc.Distance,
	}
}

func mapUserDocument(doc UserDocument) domain.User {
	hearts := make([]string, 0, len(doc.Hearts))
	for _, id := range doc.Hearts {
		hearts = append(hearts, id.Hex())
	}
	return domain.User{ID: doc.ID, Email: doc.Email, Name: doc.Name, Hearts: hearts}
}
