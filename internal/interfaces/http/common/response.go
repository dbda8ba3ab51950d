package common

import (
	"encoding/json"
	"net/http"

	"github.com/code19m/errx"
	"go.uber.org/zap"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
	"github.com/sngm3741/store-finder/api/internal/logger"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && log != nil {
		log.Errorw("JSON エンコードに失敗", "error", err)
	}
}

// WriteError maps err to its HTTP status and writes the error body.
// 5xx responses are logged with the full errx context; client errors are not.
func WriteError(log *zap.SugaredLogger, w http.ResponseWriter, err error) {
	e := errx.AsErrorX(err)
	status := StatusFor(err)

	body := ErrorResponse{Error: messageFor(e.Code(), status), Code: e.Code()}
	if e.Code() == domain.CodeValidation {
		body.Fields = e.Fields()
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.Errorw("request failed", logger.ErrorKeyvals(err)...)
	}
	WriteJSON(log, w, status, body)
}

// StatusFor returns the HTTP status for an error.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	e := errx.AsErrorX(err)
	switch e.Code() {
	case domain.CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case domain.CodeStorageWrite:
		return http.StatusServiceUnavailable
	case domain.CodeNotOwner:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidCoordinates, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeSlugConflict:
		return http.StatusConflict
	}
	switch e.Type() {
	case errx.T_NotFound:
		return http.StatusNotFound
	case errx.T_Forbidden:
		return http.StatusForbidden
	case errx.T_Authentication:
		return http.StatusUnauthorized
	case errx.T_Validation:
		return http.StatusBadRequest
	case errx.T_Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(code string, status int) string {
	switch code {
	case domain.CodeUnsupportedMediaType:
		return "画像ファイルのみアップロードできます"
	case domain.CodeStorageWrite:
		return "写真の保存に失敗しました。時間をおいて再度お試しください"
	case domain.CodeNotOwner:
		return "この店舗を編集する権限がありません"
	case domain.CodeNotFound:
		return "見つかりません"
	case domain.CodeInvalidCoordinates:
		return "座標の指定が不正です"
	case domain.CodeValidation:
		return "入力内容に誤りがあります"
	case domain.CodeSlugConflict:
		return "店舗の URL を確定できませんでした。再度お試しください"
	}
	if status >= http.StatusInternalServerError {
		return "サーバーエラーが発生しました"
	}
	return http.StatusText(status)
}
