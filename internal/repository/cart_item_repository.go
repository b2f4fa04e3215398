package repository

import (
	"context"

	"vegeapp/internal/domain/model"
)

// 明細のスナップショット列（名称・単価・単位）は追加時点の値で固定する。
type CartItemSnapshot struct {
	ProductName string
	UnitPrice   float64
	Unit        string
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	// 同一商品はプラス
	UpsertByCartAndProduct(ctx context.Context, cartID string, productID string, addQty int64, snap CartItemSnapshot) error
	UpdateQuantityByProduct(ctx context.Context, cartID string, productID string, qty int64) error
	DeleteByProduct(ctx context.Context, cartID string, productID string) error
	FindByProduct(ctx context.Context, cartID string, productID string) (model.CartItem, error)
}
