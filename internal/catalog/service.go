// Package catalog は商品カタログの参照・登録と、そのキャッシュ方針を提供する。
//
// 一覧はキャッシュから読み、なければリポジトリから取得してキャッシュへ格納する。
// 商品登録後は全件キーと該当カテゴリのキーを削除する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/catalogapi/internal/cache"
	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/repository"
)

// キャッシュキー
const (
	KeyAll            = "products:catalog:all"
	keyCategoryPrefix = "products:catalog:"
)

// 既定値
const (
	DefaultTTL   = 1800 * time.Second
	DefaultLimit = 20000
)

// CategoryResolver はカテゴリIDからカテゴリ名を解決するインターフェース。
// 存在しない場合はNotFoundのAPIErrorを返すこと。
type CategoryResolver interface {
	NameByID(ctx context.Context, id int) (string, error)
}

// CategoryKey はカテゴリ名に対応するキャッシュキーを返す。名前は加工せずそのまま使う。
func CategoryKey(categoryName string) string {
	return keyCategoryPrefix + categoryName
}

// Service は商品カタログのサービス層。
type Service struct {
	productRepo repository.ProductRepository
	categories  CategoryResolver
	store       cache.Store
	ttl         time.Duration
	limit       int
}

// NewService はServiceの新しいインスタンスを生成する。
// ttlまたはlimitが0以下の場合は既定値を使う。
func NewService(
	productRepo repository.ProductRepository,
	categories CategoryResolver,
	store cache.Store,
	ttl time.Duration,
	limit int,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		productRepo: productRepo,
		categories:  categories,
		store:       store,
		ttl:         ttl,
		limit:       limit,
	}
}

// ListAll は全商品（最大limit件）を返す。商品が1件もない場合はNotFoundを返す。
func (s *Service) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.readThrough(ctx, KeyAll, func(ctx context.Context) ([]model.Product, error) {
		return s.productRepo.ListAll(ctx, s.limit)
	})
}

// ListByCategory は指定カテゴリの商品を返す。
// カテゴリが存在しない場合、または商品が1件もない場合はNotFoundを返す。
func (s *Service) ListByCategory(ctx context.Context, categoryID int) ([]model.Product, error) {
	name, err := s.categories.NameByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return s.readThrough(ctx, CategoryKey(name), func(ctx context.Context) ([]model.Product, error) {
		return s.productRepo.ListByCategory(ctx, categoryID)
	})
}

// Create は商品を登録し、影響するキャッシュキーを削除する。
// キャッシュ削除の失敗は登録を取り消さない。
// 登録後のカテゴリ名解決に失敗した場合はそのエラーを返すが、商品は登録済みである。
func (s *Service) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("商品の登録に失敗しました: %w", err)
	}

	s.store.Delete(ctx, KeyAll)

	name, err := s.categories.NameByID(ctx, product.CategoryID)
	if err != nil {
		slog.Warn("category lookup failed after product insert",
			slog.String("asin", product.ASIN),
			slog.Int("category_id", product.CategoryID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.store.Delete(ctx, CategoryKey(name))

	slog.Info("product created",
		slog.String("asin", product.ASIN),
		slog.Int("category_id", product.CategoryID),
	)

	created := *product
	return &created, nil
}

// readThrough はキャッシュにあればそれを返し、なければloadで取得してキャッシュへ格納する。
// 空の結果はキャッシュせずNotFoundを返す。
func (s *Service) readThrough(
	ctx context.Context,
	key string,
	load func(ctx context.Context) ([]model.Product, error),
) ([]model.Product, error) {
	var cached []model.Product
	if s.store.Get(ctx, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	products, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	if len(products) == 0 {
		return nil, model.NewProductsNotFoundError()
	}

	s.store.Set(ctx, key, products, s.ttl)
	return products, nil
}
