package public_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

type MockStoreQueryService struct {
	mock.Mock
}

func (m *MockStoreQueryService) ListPage(ctx context.Context, page int) (*application.StorePage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.StorePage), args.Error(1)
}

func (m *MockStoreQueryService) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreQueryService) ListByTag(ctx context.Context, tag string) (*application.TagListing, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.TagListing), args.Error(1)
}

func (m *MockStoreQueryService) Search(ctx context.Context, query string) ([]domain.ScoredStore, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredStore), args.Error(1)
}

func (m *MockStoreQueryService) Nearby(ctx context.Context, lng, lat float64) ([]domain.NearbyStore, error) {
	args := m.Called(ctx, lng, lat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NearbyStore), args.Error(1)
}

type MockStoreCommandService struct {
	mock.Mock
}

func (m *MockStoreCommandService) Create(ctx context.Context, fields application.StoreFields, upload *application.Upload, author application.Requester) (*domain.Store, error) {
	args := m.Called(ctx, fields, upload, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreCommandService) UpdateOwned(ctx context.Context, id string, fields application.StoreFields, upload *application.Upload, requester application.Requester) (*domain.Store, error) {
	args := m.Called(ctx, id, fields, upload, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreCommandService) EditableStore(ctx context.Context, id string, requester application.Requester) (*domain.Store, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Toggle(ctx context.Context, requester application.Requester, storeID string) ([]string, error) {
	args := m.Called(ctx, requester, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFavoriteService) Hearted(ctx context.Context, requester application.Requester) ([]domain.Store, error) {
	args := m.Called(ctx, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockFavoriteService) Profile(ctx context.Context, requester application.Requester) (*domain.User, error) {
	args := m.Called(ctx, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
