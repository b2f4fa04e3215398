package repository

import (
	"context"

	"vegeapp/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID string) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID string) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID string, status model.CartStatus) error
	Clear(ctx context.Context, cartID string) error
}
