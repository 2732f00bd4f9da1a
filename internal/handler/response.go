// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hitoshi/catalogapi/internal/middleware"
	"github.com/hitoshi/catalogapi/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIErrorは種別に応じたステータスで返し、それ以外は500として扱う。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, middleware.StatusForKind(apiErr.Kind), apiErr)
		return
	}

	// APIError以外のエラーは詳細をログにのみ残す
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// decodeJSONBody はリクエストボディをdstにデコードする。
// 失敗時はINVALID_REQUESTのAPIErrorを返す。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewInvalidRequestError("JSONを解析できません")
	}
	return nil
}

// categoryIDParam はクエリパラメータcategory_idを正の整数として取得する。
func categoryIDParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("category_id")
	if raw == "" {
		return 0, model.NewInvalidRequestError("category_id は必須です")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, model.NewInvalidRequestError("category_id は正の整数で指定してください")
	}
	return id, nil
}
