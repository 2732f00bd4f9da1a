package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hitoshi/catalogapi/internal/model"
)

// pqForeignKeyViolation はPostgreSQLの外部キー制約違反のエラーコード。
const pqForeignKeyViolation = pq.ErrorCode("23503")

const productColumns = `asin, title, img_url, product_url, stars, price, category_id`

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sqlx.DB
}

var _ ProductRepository = (*PostgresProductRepo)(nil)

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sqlx.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// ListAll は商品を最大limit件取得する。
func (r *PostgresProductRepo) ListAll(ctx context.Context, limit int) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products ORDER BY asin LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListByCategory は指定カテゴリの商品を取得する。
func (r *PostgresProductRepo) ListByCategory(ctx context.Context, categoryID int) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY asin`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

// Create は商品を作成する。
// category_idに対応するカテゴリが存在しない場合はCATEGORY_NOT_FOUNDのAPIErrorを返す。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (:asin, :title, :img_url, :product_url, :stars, :price, :category_id)`,
		product,
	)
	if err != nil {
		return insertProductError(err, product.CategoryID)
	}
	return nil
}

// insertProductError はINSERT失敗をドメインエラーに変換する。
func insertProductError(err error, categoryID int) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return model.NewCategoryNotFoundError(categoryID)
	}
	return fmt.Errorf("failed to insert product: %w", err)
}
