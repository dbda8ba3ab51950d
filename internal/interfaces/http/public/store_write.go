package public

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
	"github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
)

func (h *Handler) storeCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := h.requester(w, r)
		if !ok {
			return
		}

		fields, upload, err := h.parseStoreForm(w, r)
		if err != nil {
			h.writeFormError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		store, err := h.storeCommands.Create(ctx, fields, upload, requester)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		h.logger.Infow("店舗を作成", "store_id", store.ID, "slug", store.Slug, "author", store.Author)
		w.Header().Set("Location", "/store/"+store.Slug)
		common.WriteJSON(h.logger, w, http.StatusCreated, buildStoreResponse(*store))
	}
}

func (h *Handler) storeUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := h.requester(w, r)
		if !ok {
			return
		}

		fields, upload, err := h.parseStoreForm(w, r)
		if err != nil {
			h.writeFormError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		store, err := h.storeCommands.UpdateOwned(ctx, id, fields, upload, requester)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		w.Header().Set("Location", "/store/"+store.Slug)
		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreResponse(*store))
	}
}

func (h *Handler) storeEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := h.requester(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		store, err := h.storeCommands.EditableStore(ctx, strings.TrimSpace(chi.URLParam(r, "id")), requester)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreResponse(*store))
	}
}

func (h *Handler) writeFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		common.WriteError(h.logger, w, domain.NewValidationError(map[string]string{
			fieldPhoto: "アップロードできるサイズを超えています",
		}))
		return
	}
	if common.StatusFor(err) != http.StatusInternalServerError {
		common.WriteError(h.logger, w, err)
		return
	}
	common.WriteJSON(h.logger, w, http.StatusBadRequest, common.ErrorResponse{Error: "フォームの読み取りに失敗しました"})
}
