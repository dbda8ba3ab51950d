package application_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

var errDuplicateSlug = errors.New("duplicate slug")

func isDuplicateSlug(err error) bool { return errors.Is(err, errDuplicateSlug) }

// memStoreRepository is an in-memory StoreRepository with the same
// observable semantics as the Mongo one.
type memStoreRepository struct {
	mu     sync.RWMutex
	seq    int
	stores map[string]domain.Store

	// insertErrs are returned, in order, by the next Insert calls.
	insertErrs []error
}

func newMemStoreRepository() *memStoreRepository {
	return &memStoreRepository{stores: make(map[string]domain.Store)}
}

func (r *memStoreRepository) Insert(_ context.Context, store *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.insertErrs) > 0 {
		err := r.insertErrs[0]
		r.insertErrs = r.insertErrs[1:]
		return err
	}
	for _, s := range r.stores {
		if s.Slug == store.Slug {
			return errDuplicateSlug
		}
	}
	r.seq++
	store.ID = fmt.Sprintf("%024x", r.seq)
	r.stores[store.ID] = cloneStore(*store)
	return nil
}

func (r *memStoreRepository) UpdateOwned(_ context.Context, id, requesterID string, update application.StoreUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[id]
	if !ok || s.Author != requesterID {
		return false, nil
	}
	for otherID, other := range r.stores {
		if otherID != id && other.Slug == update.Slug {
			return false, errDuplicateSlug
		}
	}
	s.Name = update.Name
	s.Slug = update.Slug
	s.Description = update.Description
	s.Tags = append([]string(nil), update.Tags...)
	if update.Location != nil {
		s.Location = *update.Location
	}
	if update.Photo != "" {
		s.Photo = update.Photo
	}
	r.stores[id] = s
	return true, nil
}

func (r *memStoreRepository) FindByID(_ context.Context, id string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, domain.NewNotFoundError("store", id)
	}
	out := cloneStore(s)
	return &out, nil
}

func (r *memStoreRepository) FindBySlug(_ context.Context, slug string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stores {
		if s.Slug == slug {
			out := cloneStore(s)
			return &out, nil
		}
	}
	return nil, domain.NewNotFoundError("store", slug)
}

func (r *memStoreRepository) FindByIDs(_ context.Context, ids []string) ([]domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Store{}
	for _, id := range ids {
		if s, ok := r.stores[id]; ok {
			out = append(out, cloneStore(s))
		}
	}
	return out, nil
}

func (r *memStoreRepository) SlugsLike(_ context.Context, base, excludeID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	re := regexp.MustCompile(domain.SlugPattern(base))
	slugs := []string{}
	for id, s := range r.stores {
		if id != excludeID && re.MatchString(s.Slug) {
			slugs = append(slugs, s.Slug)
		}
	}
	return slugs, nil
}

func (r *memStoreRepository) List(_ context.Context, skip, limit int) ([]domain.Store, error) {
	all := r.sorted(func(a, b domain.Store) bool { return a.Created.After(b.Created) })
	if skip >= len(all) {
		return []domain.Store{}, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memStoreRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.stores)), nil
}

func (r *memStoreRepository) TagCounts(context.Context) ([]domain.TagCount, error) {
	counts := map[string]int{}
	for _, s := range r.sorted(nil) {
		for _, t := range s.Tags {
			counts[t]++
		}
	}
	out := make([]domain.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, domain.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (r *memStoreRepository) FindByTag(_ context.Context, tag string) ([]domain.Store, error) {
	out := []domain.Store{}
	for _, s := range r.sorted(nil) {
		if tag == "" && len(s.Tags) > 0 {
			out = append(out, s)
			continue
		}
		for _, t := range s.Tags {
			if t == tag {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

// TextSearch scores a store by how many query words occur in its name or description.
func (r *memStoreRepository) TextSearch(_ context.Context, query string, limit int) ([]domain.ScoredStore, error) {
	words := strings.Fields(strings.ToLower(query))
	hits := []domain.ScoredStore{}
	for _, s := range r.sorted(nil) {
		text := strings.ToLower(s.Name + " " + s.Description)
		var score float64
		for _, w := range words {
			score += float64(strings.Count(text, w))
		}
		if score > 0 {
			hits = append(hits, domain.ScoredStore{Store: s, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (r *memStoreRepository) GeoNear(_ context.Context, lng, lat float64, maxDistance float64, limit int) ([]domain.NearbyStore, error) {
	out := []domain.NearbyStore{}
	for _, s := range r.sorted(nil) {
		d := haversineMeters(lng, lat, s.Location.Lng(), s.Location.Lat())
		if d > maxDistance {
			continue
		}
		out = append(out, domain.NearbyStore{
			Slug:        s.Slug,
			Name:        s.Name,
			Description: s.Description,
			Location:    s.Location,
			Photo:       s.Photo,
			Distance:    d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sorted returns a snapshot ordered by less, or by id when less is nil.
func (r *memStoreRepository) sorted(less func(a, b domain.Store) bool) []domain.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Store, 0, len(r.stores))
	for _, s := range r.stores {
		out = append(out, cloneStore(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if less != nil {
			return less(out[i], out[j])
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memStoreRepository) put(s domain.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[s.ID] = cloneStore(s)
}

func cloneStore(s domain.Store) domain.Store {
	s.Tags = append([]string(nil), s.Tags...)
	return s
}

func haversineMeters(lng1, lat1, lng2, lat2 float64) float64 {
	const earthRadius = 6378100.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

// memUserRepository keeps favorite sets in memory. Every mutation holds the
// lock for the whole read-modify-write, like a single-document update.
type memUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: make(map[string]domain.User)}
}

func (r *memUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id)
	}
	u.Hearts = append([]string{}, u.Hearts...)
	return &u, nil
}

func (r *memUserRepository) AddToSet(_ context.Context, profile domain.User, storeID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[profile.ID]
	if !ok {
		u = domain.User{ID: profile.ID, Email: profile.Email, Name: profile.Name}
	}
	if !u.HasHeart(storeID) {
		u.Hearts = append(u.Hearts, storeID)
	}
	r.users[u.ID] = u
	out := u
	out.Hearts = append([]string{}, u.Hearts...)
	return &out, nil
}

func (r *memUserRepository) Remove(_ context.Context, userID, storeID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, domain.NewNotFoundError("user", userID)
	}
	kept := []string{}
	for _, h := range u.Hearts {
		if h != storeID {
			kept = append(kept, h)
		}
	}
	u.Hearts = kept
	r.users[userID] = u
	out := u
	out.Hearts = append([]string{}, kept...)
	return &out, nil
}

// memPhotoStorage records saved photos by name.
type memPhotoStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemPhotoStorage() *memPhotoStorage {
	return &memPhotoStorage{files: make(map[string][]byte)}
}

func (s *memPhotoStorage) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
	return nil
}

func (s *memPhotoStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *memPhotoStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func (s *memPhotoStorage) get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// MockPhotoStorage is a testify mock of application.PhotoStorage.
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Save(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockPhotoStorage) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
