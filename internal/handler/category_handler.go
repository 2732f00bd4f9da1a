package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/catalogapi/internal/model"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	NameByID(ctx context.Context, id int) (string, error)
	CountProducts(ctx context.Context) ([]model.CategoryCount, error)
}

// CategoryHandler はカテゴリのHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// Name はカテゴリ名を文字列として返す。
// GET /category/name/?category_id={id}
func (h *CategoryHandler) Name(w http.ResponseWriter, r *http.Request) {
	categoryID, err := categoryIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	name, err := h.service.NameByID(r.Context(), categoryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, name)
}

// Count はカテゴリごとの商品数を多い順に返す。
// GET /category/count
func (h *CategoryHandler) Count(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountProducts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
