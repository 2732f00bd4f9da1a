package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/hitoshi/catalogapi/internal/middleware"
	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/security"
)

// CatalogServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID int) ([]model.Product, error)
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
}

// productRequest はPOST /products のリクエストボディ。
type productRequest struct {
	ASIN       string   `json:"asin"`
	Title      *string  `json:"title"`
	ImgURL     *string  `json:"imgUrl"`
	ProductURL *string  `json:"productURL"`
	Stars      *float64 `json:"stars"`
	Price      *float64 `json:"price"`
	CategoryID int      `json:"category_id"`
}

// Validate はリクエストの入力値を検証する。
func (req *productRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ASIN, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.ImgURL, is.URL),
		validation.Field(&req.ProductURL, is.URL),
		validation.Field(&req.Stars, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&req.Price, validation.Min(0.0)),
		validation.Field(&req.CategoryID, validation.Required, validation.Min(1)),
	)
}

func (req *productRequest) toProduct(sanitizer security.TextSanitizer) *model.Product {
	return &model.Product{
		ASIN:       strings.TrimSpace(req.ASIN),
		Title:      security.SanitizePtr(sanitizer, req.Title),
		ImgURL:     req.ImgURL,
		ProductURL: req.ProductURL,
		Stars:      req.Stars,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
}

// CatalogHandler は商品カタログのHTTPハンドラー。
type CatalogHandler struct {
	service   CatalogServiceInterface
	sanitizer security.TextSanitizer
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		sanitizer: security.NewTextSanitizer(),
	}
}

// ListProducts は全商品を返す。
// GET /products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListProductsByCategory は指定カテゴリの商品を返す。
// GET /products/?category_id={id}
func (h *CatalogHandler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := categoryIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	products, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct は商品を登録する。管理者のみ実行できる。
// POST /products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, model.NewInvalidRequestError(err.Error()))
		return
	}

	created, err := h.service.Create(r.Context(), req.toProduct(h.sanitizer))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		slog.Info("product created",
			slog.String("asin", created.ASIN),
			slog.Int("category_id", created.CategoryID),
			slog.String("created_by", id.Email),
		)
	}
	writeJSON(w, http.StatusCreated, created)
}
