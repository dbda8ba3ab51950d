package application

import (
	"context"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// Fixed sizes of the read paths.
const (
	PageSize    = 4
	SearchLimit = 5
)

// StoreRepository is the storage port for stores. Each method is one explicit
// storage primitive so the services stay engine agnostic.
type StoreRepository interface {
	Insert(ctx context.Context, store *domain.Store) error
	// UpdateOwned applies update to the store only when its author is requesterID.
	// It reports false when no store matched id and author together.
	UpdateOwned(ctx context.Context, id, requesterID string, update StoreUpdate) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Store, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Store, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Store, error)
	// SlugsLike returns the slugs equal to base or base-<digits>, ignoring the store excludeID.
	SlugsLike(ctx context.Context, base, excludeID string) ([]string, error)
	List(ctx context.Context, skip, limit int) ([]domain.Store, error)
	Count(ctx context.Context) (int64, error)
	TagCounts(ctx context.Context) ([]domain.TagCount, error)
	// FindByTag returns stores carrying tag, or every tagged store when tag is empty.
	FindByTag(ctx context.Context, tag string) ([]domain.Store, error)
	// TextSearch returns at most limit hits, best score first.
	TextSearch(ctx context.Context, query string, limit int) ([]domain.ScoredStore, error)
	// GeoNear returns at most limit stores within maxDistanceMeters, nearest first.
	GeoNear(ctx context.Context, lng, lat float64, maxDistanceMeters float64, limit int) ([]domain.NearbyStore, error)
}

// UserRepository is the storage port for favorite sets.
type UserRepository interface {
	// FindByID returns the user or a NotFound error.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// AddToSet adds storeID to the user's hearts, creating the user from profile when absent.
	AddToSet(ctx context.Context, profile domain.User, storeID string) (*domain.User, error)
	// Remove pulls storeID from the user's hearts.
	Remove(ctx context.Context, userID, storeID string) (*domain.User, error)
}

// PhotoStorage persists processed photos under their final name.
// Save must not leave a partial file under name when it fails.
type PhotoStorage interface {
	Save(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// StoreUpdate is the set of fields an owner may change. Author is deliberately absent.
// A nil Location leaves the stored location untouched and an empty Photo keeps the current photo.
type StoreUpdate struct {
	Name        string
	Slug        string
	Description string
	Tags        []string
	Location    *domain.Location
	Photo       string
}

// StoreFields is the submitted store form.
type StoreFields struct {
	Name        string
	Description string
	Tags        []string
	Location    *LocationInput
}

// LocationInput is the submitted location; nil means "not part of this submission".
type LocationInput struct {
	Lng     float64
	Lat     float64
	Address string
}

// Upload is a photo taken from a request, consumed once by the ingestor.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// StorePage is one page of the store listing.
type StorePage struct {
	Stores     []domain.Store
	Total      int64
	Page       int
	LastPage   int
	OutOfRange bool
}

// TagListing is the faceted tag browse result.
type TagListing struct {
	Tag    string
	Tags   []domain.TagCount
	Stores []domain.Store
}

// Requester identifies the authenticated caller.
type Requester struct {
	ID    string
	Name  string
	Email string
}

// StoreCommandService covers the write use cases.
type StoreCommandService interface {
	Create(ctx context.Context, fields StoreFields, upload *Upload, author Requester) (*domain.Store, error)
	UpdateOwned(ctx context.Context, id string, fields StoreFields, upload *Upload, requester Requester) (*domain.Store, error)
	EditableStore(ctx context.Context, id string, requester Requester) (*domain.Store, error)
}

// StoreQueryService covers the read use cases.
type StoreQueryService interface {
	ListPage(ctx context.Context, page int) (*StorePage, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Store, error)
	ListByTag(ctx context.Context, tag string) (*TagListing, error)
	Search(ctx context.Context, query string) ([]domain.ScoredStore, error)
	Nearby(ctx context.Context, lng, lat float64) ([]domain.NearbyStore, error)
}

// FavoriteService covers hearts.
type FavoriteService interface {
	Toggle(ctx context.Context, requester Requester, storeID string) ([]string, error)
	Hearted(ctx context.Context, requester Requester) ([]domain.Store, error)
	Profile(ctx context.Context, requester Requester) (*domain.User, error)
}
