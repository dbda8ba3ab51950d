package public

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/code19m/errx"
	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
)

func (h *Handler) photoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		name := chi.URLParam(r, "file")
		if h.photos == nil || name == "" || name != path.Base(name) {
			http.NotFound(w, r)
			return
		}

		rc, err := h.photos.Open(ctx, name)
		if err != nil {
			if errx.GetType(err) == errx.T_NotFound {
				http.NotFound(w, r)
				return
			}
			common.WriteError(h.logger, w, err)
			return
		}
		defer rc.Close()

		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		// ファイル名は UUID なので内容は不変。
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, rc); err != nil {
			h.logger.Warnw("写真の送信に失敗", "file", name, "error", err)
		}
	}
}
