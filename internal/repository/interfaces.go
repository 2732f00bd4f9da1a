// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/catalogapi/internal/model"
)

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// ListAll は商品を最大limit件取得する。該当がない場合は空スライスを返す。
	ListAll(ctx context.Context, limit int) ([]model.Product, error)

	// ListByCategory は指定カテゴリの商品を取得する。該当がない場合は空スライスを返す。
	ListByCategory(ctx context.Context, categoryID int) ([]model.Product, error)

	// Create は商品を作成する。カテゴリの存在は外部キー制約で保証する。
	Create(ctx context.Context, product *model.Product) error
}

// CategoryRepository はカテゴリデータの参照インターフェース。
type CategoryRepository interface {
	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int) (*model.Category, error)

	// CountProducts は商品を持つカテゴリごとの商品数を件数の降順で返す。
	CountProducts(ctx context.Context) ([]model.CategoryCount, error)
}

// UserRepository はローカルユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、保存された行を返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
