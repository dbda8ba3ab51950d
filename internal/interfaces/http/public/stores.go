package public

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
)

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		page, _ := common.ParsePositiveInt(chi.URLParam(r, "page"), 1)

		result, err := h.storeQueries.ListPage(ctx, page)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		// 範囲外のページは最終ページへ戻す。
		if result.OutOfRange && result.LastPage > 0 {
			http.Redirect(w, r, fmt.Sprintf("/stores/page/%d", result.LastPage), http.StatusFound)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildStorePageResponse(result))
	}
}

func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		store, err := h.storeQueries.FindBySlug(ctx, slug)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreResponse(*store))
	}
}

func (h *Handler) tagListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		listing, err := h.storeQueries.ListByTag(ctx, chi.URLParam(r, "tag"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildTagListResponse(listing))
	}
}
