package public

import (
	"context"
	"net/http"
	"time"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
	"github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
)

func (h *Handler) searchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		hits, err := h.storeQueries.Search(ctx, r.URL.Query().Get("q"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		items := make([]searchHitResponse, 0, len(hits))
		for _, hit := range hits {
			items = append(items, searchHitResponse{storeResponse: buildStoreResponse(hit.Store), Score: hit.Score})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, items)
	}
}

func (h *Handler) nearbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		lng, lngOK := common.ParseFloat(query.Get("lng"))
		lat, latOK := common.ParseFloat(query.Get("lat"))
		if !lngOK || !latOK {
			common.WriteError(h.logger, w, domain.NewInvalidCoordinatesError("lng and lat must be numbers"))
			return
		}

		stores, err := h.storeQueries.Nearby(ctx, lng, lat)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		items := make([]nearbyStoreResponse, 0, len(stores))
		for _, store := range stores {
			items = append(items, buildNearbyResponse(store))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, items)
	}
}
