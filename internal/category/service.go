// Package category はカテゴリ参照のドメインロジックを提供する。
package category

import (
	"context"
	"fmt"

	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/repository"
)

// Service はカテゴリ参照のサービス層。結果はキャッシュしない。
type Service struct {
	categoryRepo repository.CategoryRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(categoryRepo repository.CategoryRepository) *Service {
	return &Service{categoryRepo: categoryRepo}
}

// NameByID はカテゴリIDからカテゴリ名を返す。
// 存在しない場合はNotFoundのAPIErrorを返す。
func (s *Service) NameByID(ctx context.Context, id int) (string, error) {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if c == nil {
		return "", model.NewCategoryNotFoundError(id)
	}
	return c.Name, nil
}

// CountProducts はカテゴリごとの商品数を件数の降順で返す。
// 集計結果が空の場合はNotFoundのAPIErrorを返す。
func (s *Service) CountProducts(ctx context.Context) ([]model.CategoryCount, error) {
	counts, err := s.categoryRepo.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ別商品数の集計に失敗しました: %w", err)
	}
	if len(counts) == 0 {
		return nil, model.NewCategoriesNotFoundError()
	}
	return counts, nil
}
