package application

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

type favoriteService struct {
	stores   StoreRepository
	users    UserRepository
	validate *validator.Validate
}

// NewFavoriteService creates the hearts use cases.
func NewFavoriteService(stores StoreRepository, users UserRepository) FavoriteService {
	return &favoriteService{stores: stores, users: users, validate: newValidator()}
}

// Toggle flips storeID in the requester's hearts and returns the resulting set.
// Both directions are single atomic set operations in storage, so concurrent
// toggles never lose an unrelated entry.
func (s *favoriteService) Toggle(ctx context.Context, requester Requester, storeID string) ([]string, error) {
	if strings.TrimSpace(requester.ID) == "" {
		return nil, domain.NewValidationError(map[string]string{"user": "user is required"})
	}
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	current, err := s.users.FindByID(ctx, requester.ID)
	switch {
	case err == nil:
	case domain.IsNotFound(err):
		current = &domain.User{ID: requester.ID}
	default:
		return nil, err
	}

	var updated *domain.User
	if current.HasHeart(store.ID) {
		updated, err = s.users.Remove(ctx, requester.ID, store.ID)
	} else {
		updated, err = s.users.AddToSet(ctx, s.profileOf(requester), store.ID)
	}
	if err != nil {
		return nil, err
	}
	if updated.Hearts == nil {
		return []string{}, nil
	}
	return updated.Hearts, nil
}

func (s *favoriteService) Hearted(ctx context.Context, requester Requester) ([]domain.Store, error) {
	user, err := s.users.FindByID(ctx, requester.ID)
	if domain.IsNotFound(err) {
		return []domain.Store{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(user.Hearts) == 0 {
		return []domain.Store{}, nil
	}
	return s.stores.FindByIDs(ctx, user.Hearts)
}

func (s *favoriteService) Profile(ctx context.Context, requester Requester) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, requester.ID)
	if domain.IsNotFound(err) {
		profile := s.profileOf(requester)
		profile.Hearts = []string{}
		return &profile, nil
	}
	return user, err
}

// profileOf builds the profile stored on first heart. An unparsable email is dropped.
func (s *favoriteService) profileOf(r Requester) domain.User {
	u := domain.User{ID: r.ID, Name: strings.TrimSpace(r.Name)}
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email != "" && s.validate.Var(email, "email") == nil {
		u.Email = email
	}
	return u
}
