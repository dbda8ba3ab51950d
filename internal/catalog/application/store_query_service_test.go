package application_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// Tokyo Station.
const centerLng, centerLat = 139.7671, 35.6812

func seedStore(repo *memStoreRepository, n int, name string, tags []string, lng, lat float64) domain.Store {
	s := domain.Store{
		ID:       fmt.Sprintf("%024x", n),
		Name:     name,
		Slug:     domain.Slugify(name),
		Tags:     tags,
		Location: domain.NewPoint(lng, lat, name+" address"),
		Author:   "U1",
		Created:  time.Date(2024, 1, 1, 0, 0, n, 0, time.UTC),
	}
	repo.put(s)
	return s
}

func TestStoreQueryService_ListPage(t *testing.T) {
	repo := newMemStoreRepository()
	for i := 1; i <= 6; i++ {
		seedStore(repo, i, fmt.Sprintf("Store %d", i), nil, centerLng, centerLat)
	}
	service := application.NewStoreQueryService(repo)
	ctx := context.Background()

	first, err := service.ListPage(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, first.Stores, 4)
	assert.Equal(t, "Store 6", first.Stores[0].Name, "newest first")
	assert.EqualValues(t, 6, first.Total)
	assert.Equal(t, 2, first.LastPage)
	assert.False(t, first.OutOfRange)

	second, err := service.ListPage(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second.Stores, 2)
	assert.Equal(t, "Store 1", second.Stores[1].Name)

	beyond, err := service.ListPage(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, beyond.Stores)
	assert.True(t, beyond.OutOfRange)
	assert.Equal(t, 2, beyond.LastPage)

	clamped, err := service.ListPage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
	assert.Len(t, clamped.Stores, 4)
}

func TestStoreQueryService_ListPageEmpty(t *testing.T) {
	page, err := application.NewStoreQueryService(newMemStoreRepository()).ListPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, page.Stores)
	assert.False(t, page.OutOfRange, "page one is never out of range")
	assert.Zero(t, page.LastPage)
}

func TestStoreQueryService_FindBySlug(t *testing.T) {
	repo := newMemStoreRepository()
	seeded := seedStore(repo, 1, "Café A", nil, centerLng, centerLat)
	service := application.NewStoreQueryService(repo)

	store, err := service.FindBySlug(context.Background(), "cafe-a")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, store.ID)

	_, err = service.FindBySlug(context.Background(), "nope")
	assert.True(t, domain.IsNotFound(err))

	_, err = service.FindBySlug(context.Background(), " ")
	assert.True(t, domain.IsNotFound(err))
}

func TestStoreQueryService_ListByTag(t *testing.T) {
	repo := newMemStoreRepository()
	seedStore(repo, 1, "A", []string{"Wifi", "Vegan"}, centerLng, centerLat)
	seedStore(repo, 2, "B", []string{"Wifi"}, centerLng, centerLat)
	seedStore(repo, 3, "C", nil, centerLng, centerLat)
	service := application.NewStoreQueryService(repo)
	ctx := context.Background()

	listing, err := service.ListByTag(ctx, "Vegan")
	require.NoError(t, err)
	assert.Equal(t, "Vegan", listing.Tag)
	assert.Equal(t, []domain.TagCount{{Tag: "Wifi", Count: 2}, {Tag: "Vegan", Count: 1}}, listing.Tags)
	require.Len(t, listing.Stores, 1)
	assert.Equal(t, "A", listing.Stores[0].Name)

	all, err := service.ListByTag(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Stores, 2, "untagged stores are excluded")
}

func TestStoreQueryService_Search(t *testing.T) {
	repo := newMemStoreRepository()
	for i := 1; i <= 7; i++ {
		seedStore(repo, i, fmt.Sprintf("Coffee House %d", i), nil, centerLng, centerLat)
	}
	seedStore(repo, 8, "Tea Room", nil, centerLng, centerLat)
	service := application.NewStoreQueryService(repo)
	ctx := context.Background()

	hits, err := service.Search(ctx, "coffee")
	require.NoError(t, err)
	assert.Len(t, hits, application.SearchLimit)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}

	blank, err := service.Search(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, blank)
	assert.Empty(t, blank)

	none, err := service.Search(ctx, "pizza")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreQueryService_Nearby(t *testing.T) {
	repo := newMemStoreRepository()
	seedStore(repo, 1, "Shibuya", nil, 139.7005, 35.6595)  // ~6.4km
	seedStore(repo, 2, "Ginza", nil, 139.7745, 35.6717)    // ~1.2km
	seedStore(repo, 3, "Yokohama", nil, 139.6380, 35.4437) // ~28km
	service := application.NewStoreQueryService(repo)

	stores, err := service.Nearby(context.Background(), centerLng, centerLat)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "Ginza", stores[0].Name)
	assert.Equal(t, "Shibuya", stores[1].Name)
	for _, s := range stores {
		assert.LessOrEqual(t, s.Distance, float64(domain.NearbyMaxDistanceMeters))
	}
}

func TestStoreQueryService_NearbyLimit(t *testing.T) {
	repo := newMemStoreRepository()
	for i := 1; i <= 15; i++ {
		seedStore(repo, i, fmt.Sprintf("S%d", i), nil, centerLng+float64(i)*0.001, centerLat)
	}

	stores, err := application.NewStoreQueryService(repo).Nearby(context.Background(), centerLng, centerLat)
	require.NoError(t, err)
	assert.Len(t, stores, domain.NearbyLimit)
	assert.Equal(t, "S1", stores[0].Name)
}

func TestStoreQueryService_NearbyRejectsInvalidCoordinates(t *testing.T) {
	service := application.NewStoreQueryService(newMemStoreRepository())

	for _, c := range [][2]float64{{181, 0}, {0, -91}, {math.NaN(), 0}, {0, math.Inf(1)}} {
		_, err := service.Nearby(context.Background(), c[0], c[1])
		assert.True(t, domain.IsInvalidCoordinates(err), "%v", c)
	}
}

// limitRecorder keeps the caps the service hands to the repository.
type limitRecorder struct {
	*memStoreRepository
	searchLimit, nearLimit int
	nearDistance           float64
}

func (r *limitRecorder) TextSearch(ctx context.Context, query string, limit int) ([]domain.ScoredStore, error) {
	r.searchLimit = limit
	return r.memStoreRepository.TextSearch(ctx, query, limit)
}

func (r *limitRecorder) GeoNear(ctx context.Context, lng, lat, maxDistance float64, limit int) ([]domain.NearbyStore, error) {
	r.nearLimit, r.nearDistance = limit, maxDistance
	return r.memStoreRepository.GeoNear(ctx, lng, lat, maxDistance, limit)
}

func TestStoreQueryService_PassesCapsToRepository(t *testing.T) {
	repo := &limitRecorder{memStoreRepository: newMemStoreRepository()}
	seedStore(repo.memStoreRepository, 1, "Coffee House", nil, centerLng, centerLat)
	service := application.NewStoreQueryService(repo)
	ctx := context.Background()

	hits, err := service.Search(ctx, "coffee")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, application.SearchLimit, repo.searchLimit)

	near, err := service.Nearby(ctx, centerLng, centerLat)
	require.NoError(t, err)
	assert.Len(t, near, 1)
	assert.Equal(t, domain.NearbyLimit, repo.nearLimit)
	assert.Equal(t, float64(domain.NearbyMaxDistanceMeters), repo.nearDistance)
}
