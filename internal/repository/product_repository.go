package repository

import (
	"context"
	"errors"

	"vegeapp/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索。Categoryは "All" で絞り込みなし。
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 在庫ありの公開商品のみ。並びは登録順で安定
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	ListCategories(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id string) error

	// 帳票用。論理削除済みも在庫切れも含めて全件（登録順）
	ListAllForExport(ctx context.Context) ([]model.Product, error)
}
