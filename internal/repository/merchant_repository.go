package repository

import (
	"context"
	"time"

	"vegeapp/internal/domain/model"
)

type MerchantEntryRepository interface {
	// 伝票と袋明細をまとめて保存
	Create(ctx context.Context, entry model.MerchantEntry) (model.MerchantEntry, error)
	// dateがnilなら全件（ユーザー単位、新しい順）
	ListByUserID(ctx context.Context, userID string, date *time.Time) ([]model.MerchantEntry, error)
	FindByID(ctx context.Context, entryID string) (model.MerchantEntry, error)
}
