package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/catalogapi/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sqlx.DB
}

var _ CategoryRepository = (*PostgresCategoryRepo)(nil)

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sqlx.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id int) (*model.Category, error) {
	category := &model.Category{}
	err := r.db.GetContext(ctx, category,
		`SELECT id, category_name FROM categories WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return category, nil
}

// CountProducts は商品を持つカテゴリごとの商品数を件数の降順で返す。
// 商品が1件もないカテゴリは含まない。
func (r *PostgresCategoryRepo) CountProducts(ctx context.Context) ([]model.CategoryCount, error) {
	counts := []model.CategoryCount{}
	err := r.db.SelectContext(ctx, &counts,
		`SELECT c.id AS category_id, c.category_name, COUNT(p.asin) AS total_products
		 FROM products p
		 JOIN categories c ON p.category_id = c.id
		 GROUP BY c.id, c.category_name
		 ORDER BY total_products DESC, c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}
	return counts, nil
}
