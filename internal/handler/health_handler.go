package handler

import "net/http"

// HealthResponse はヘルスチェックのレスポンス。
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthHandler は稼働確認用のHTTPハンドラー。
type HealthHandler struct {
	version string
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Health はアプリケーションのバージョンを含む稼働状態を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Root は疎通確認用の固定レスポンスを返す。
// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"hello": "world"})
}
