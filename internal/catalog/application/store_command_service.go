package application

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// maxSlugAttempts bounds slug regeneration when a concurrent insert takes the same slug.
const maxSlugAttempts = 3

// SlugTakenChecker lets the service recognise a unique-index violation on slug
// without knowing the storage engine.
type SlugTakenChecker func(err error) bool

// storeCommandService implements StoreCommandService.
type storeCommandService struct {
	repo      StoreRepository
	ingestor  *MediaIngestor
	validate  *validator.Validate
	slugTaken SlugTakenChecker
	now       func() time.Time
}

// NewStoreCommandService wires the write use cases.
func NewStoreCommandService(repo StoreRepository, ingestor *MediaIngestor, slugTaken SlugTakenChecker) StoreCommandService {
	if slugTaken == nil {
		slugTaken = func(error) bool { return false }
	}
	return &storeCommandService{
		repo:      repo,
		ingestor:  ingestor,
		validate:  newValidator(),
		slugTaken: slugTaken,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *storeCommandService) Create(ctx context.Context, fields StoreFields, upload *Upload, author Requester) (*domain.Store, error) {
	if strings.TrimSpace(author.ID) == "" {
		return nil, domain.NewValidationError(map[string]string{"author": "author is required"})
	}
	if err := s.validateFields(fields, true); err != nil {
		return nil, err
	}

	photo, err := s.ingestor.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}

	now := s.now()
	store := &domain.Store{
		Name:        strings.TrimSpace(fields.Name),
		Description: strings.TrimSpace(fields.Description),
		Tags:        domain.NormalizeTags(fields.Tags),
		Location:    domain.NewPoint(fields.Location.Lng, fields.Location.Lat, fields.Location.Address),
		Photo:       photo,
		Author:      author.ID,
		Created:     now,
		UpdatedAt:   now,
	}

	if err := s.insertWithSlug(ctx, store); err != nil {
		_ = s.ingestor.Discard(ctx, photo)
		return nil, err
	}
	return store, nil
}

func (s *storeCommandService) UpdateOwned(ctx context.Context, id string, fields StoreFields, upload *Upload, requester Requester) (*domain.Store, error) {
	current, err := s.EditableStore(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if err := s.validateFields(fields, false); err != nil {
		return nil, err
	}

	photo, err := s.ingestor.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}

	update := StoreUpdate{
		Name:        strings.TrimSpace(fields.Name),
		Slug:        current.Slug,
		Description: strings.TrimSpace(fields.Description),
		Tags:        domain.NormalizeTags(fields.Tags),
		Photo:       photo,
	}
	if fields.Location != nil {
		loc := domain.NewPoint(fields.Location.Lng, fields.Location.Lat, fields.Location.Address)
		update.Location = &loc
	}
	if update.Name != current.Name {
		slug, err := s.allocateSlug(ctx, update.Name, current.ID)
		if err != nil {
			_ = s.ingestor.Discard(ctx, photo)
			return nil, err
		}
		update.Slug = slug
	}

	matched, err := s.repo.UpdateOwned(ctx, current.ID, requester.ID, update)
	if err != nil {
		_ = s.ingestor.Discard(ctx, photo)
		if s.slugTaken(err) {
			return nil, domain.NewSlugConflictError(update.Slug)
		}
		return nil, err
	}
	if !matched {
		// The store vanished or changed hands between the check and the write.
		_ = s.ingestor.Discard(ctx, photo)
		return nil, domain.NewOwnershipError(current.ID)
	}

	return s.repo.FindByID(ctx, current.ID)
}

func (s *storeCommandService) EditableStore(ctx context.Context, id string, requester Requester) (*domain.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !store.OwnedBy(requester.ID) {
		return nil, domain.NewOwnershipError(store.ID)
	}
	return store, nil
}

func (s *storeCommandService) insertWithSlug(ctx context.Context, store *domain.Store) error {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.allocateSlug(ctx, store.Name, "")
		if err != nil {
			return err
		}
		store.Slug = slug
		err = s.repo.Insert(ctx, store)
		if err == nil {
			return nil
		}
		if !s.slugTaken(err) {
			return err
		}
	}
	return domain.NewSlugConflictError(store.Slug)
}

func (s *storeCommandService) allocateSlug(ctx context.Context, name, excludeID string) (string, error) {
	base := domain.Slugify(name)
	taken, err := s.repo.SlugsLike(ctx, base, excludeID)
	if err != nil {
		return "", err
	}
	return domain.NextSlug(base, taken), nil
}

// storeForm is the validation view of StoreFields.
type storeForm struct {
	Name     string        `form:"name" validate:"required,max=200"`
	Location *locationForm `form:"location" validate:"omitempty"`
	Tags     []string      `form:"tags" validate:"dive,max=50"`
}

type locationForm struct {
	Lng     float64 `form:"lng" validate:"gte=-180,lte=180"`
	Lat     float64 `form:"lat" validate:"gte=-90,lte=90"`
	Address string  `form:"address" validate:"required"`
}

func (s *storeCommandService) validateFields(fields StoreFields, requireLocation bool) error {
	form := storeForm{
		Name: strings.TrimSpace(fields.Name),
		Tags: domain.NormalizeTags(fields.Tags),
	}
	if fields.Location != nil {
		form.Location = &locationForm{
			Lng:     fields.Location.Lng,
			Lat:     fields.Location.Lat,
			Address: strings.TrimSpace(fields.Location.Address),
		}
	}

	problems := validationProblems(s.validate, form)
	if requireLocation && fields.Location == nil {
		problems["location"] = "you must supply coordinates"
	}
	if len(problems) > 0 {
		return domain.NewValidationError(problems)
	}
	return nil
}
