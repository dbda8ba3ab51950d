package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
)

func (h *Handler) heartToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := h.requester(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		hearts, err := h.favorites.Toggle(ctx, requester, strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, heartsResponse{Hearts: hearts})
	}
}

func (h *Handler) heartsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := h.requester(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stores, err := h.favorites.Hearted(ctx, requester)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": buildStoreResponses(stores)})
	}
}

func (h *Handler) profileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, common.ErrorResponse{Error: "認証情報の取得に失敗しました"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := h.favorites.Profile(ctx, requesterFrom(user))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		resp := profileResponse{
			ID:      user.ID,
			Name:    firstNonEmpty(profile.Name, user.Name),
			Email:   firstNonEmpty(profile.Email, user.Email),
			Picture: user.Picture,
			Hearts:  profile.Hearts,
		}
		if resp.Hearts == nil {
			resp.Hearts = []string{}
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

// requester reads the authenticated user or writes a 500; the auth middleware
// guarantees one is present on these routes.
func (h *Handler) requester(w http.ResponseWriter, r *http.Request) (application.Requester, bool) {
	user, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(h.logger, w, http.StatusInternalServerError, common.ErrorResponse{Error: "認証情報の取得に失敗しました"})
		return application.Requester{}, false
	}
	return requesterFrom(user), true
}

func requesterFrom(user common.AuthenticatedUser) application.Requester {
	return application.Requester{
		ID:    user.ID,
		Name:  firstNonEmpty(user.Name, user.Username),
		Email: user.Email,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
