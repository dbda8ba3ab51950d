package application

import (
	"context"
	"strings"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// storeQueryService is the concrete implementation of StoreQueryService.
type storeQueryService struct {
	repo StoreRepository
}

// NewStoreQueryService creates a new store query service.
func NewStoreQueryService(repo StoreRepository) StoreQueryService {
	return &storeQueryService{repo: repo}
}

func (s *storeQueryService) ListPage(ctx context.Context, page int) (*StorePage, error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * PageSize

	stores, err := s.repo.List(ctx, skip, PageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &StorePage{
		Stores:     stores,
		Total:      total,
		Page:       page,
		LastPage:   lastPage(total, PageSize),
		OutOfRange: len(stores) == 0 && skip > 0,
	}, nil
}

func (s *storeQueryService) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.NewNotFoundError("store", slug)
	}
	return s.repo.FindBySlug(ctx, slug)
}

func (s *storeQueryService) ListByTag(ctx context.Context, tag string) (*TagListing, error) {
	tag = strings.TrimSpace(tag)
	tags, err := s.repo.TagCounts(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := s.repo.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	return &TagListing{Tag: tag, Tags: tags, Stores: stores}, nil
}

func (s *storeQueryService) Search(ctx context.Context, query string) ([]domain.ScoredStore, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ScoredStore{}, nil
	}
	return s.repo.TextSearch(ctx, query, SearchLimit)
}

func (s *storeQueryService) Nearby(ctx context.Context, lng, lat float64) ([]domain.NearbyStore, error) {
	if err := domain.ValidateCoordinates(lng, lat); err != nil {
		return nil, err
	}
	return s.repo.GeoNear(ctx, lng, lat, domain.NearbyMaxDistanceMeters, domain.NearbyLimit)
}

// lastPage is ceil(total/size).
func lastPage(total int64, size int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
