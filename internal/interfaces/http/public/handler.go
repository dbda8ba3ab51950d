package public

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
)

const defaultUploadMaxBytes = 10 << 20

// PhotoSource opens stored photos for serving.
type PhotoSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *zap.SugaredLogger
	storeQueries   application.StoreQueryService
	storeCommands  application.StoreCommandService
	favorites      application.FavoriteService
	photos         PhotoSource
	uploadMaxBytes int64
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *zap.SugaredLogger
	StoreQueries   application.StoreQueryService
	StoreCommands  application.StoreCommandService
	Favorites      application.FavoriteService
	Photos         PhotoSource
	UploadMaxBytes int64
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	maxBytes := cfg.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	return &Handler{
		logger:         log.Named("http"),
		storeQueries:   cfg.StoreQueries,
		storeCommands:  cfg.StoreCommands,
		favorites:      cfg.Favorites,
		photos:         cfg.Photos,
		uploadMaxBytes: maxBytes,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/stores", h.storeListHandler())
	r.Get("/stores/page/{page}", h.storeListHandler())
	r.Get("/store/{slug}", h.storeDetailHandler())
	r.Get("/tags", h.tagListHandler())
	r.Get("/tags/{tag}", h.tagListHandler())
	r.Get("/api/search", h.searchHandler())
	r.Get("/api/stores/near", h.nearbyHandler())
	r.Get("/uploads/{file}", h.photoHandler())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/stores", h.storeCreateHandler())
		r.Post("/stores/{id}", h.storeUpdateHandler())
		r.Get("/stores/{id}/edit", h.storeEditHandler())
		r.Post("/api/stores/{id}/heart", h.heartToggleHandler())
		r.Get("/hearts", h.heartsHandler())
		r.Get("/me", h.profileHandler())
	})
}
