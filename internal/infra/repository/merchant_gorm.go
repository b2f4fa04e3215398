package repository

import (
	"context"
	"errors"
	"time"

	"vegeapp/internal/domain/model"
	domainrepo "vegeapp/internal/repository"

	"gorm.io/gorm"
)

type MerchantGormRepository struct {
	db *gorm.DB
}

func NewMerchantGormRepository(db *gorm.DB) *MerchantGormRepository {
	return &MerchantGormRepository{db: db}
}

// 伝票と袋明細をまとめて保存（アソシエーションで一括INSERT）
func (r *MerchantGormRepository) Create(ctx context.Context, entry model.MerchantEntry) (model.MerchantEntry, error) {
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return model.MerchantEntry{}, err
	}
	return entry, nil
}

// ユーザー単位の伝票一覧（新しい順）。dateを渡すとその日だけ
func (r *MerchantGormRepository) ListByUserID(ctx context.Context, userID string, date *time.Time) ([]model.MerchantEntry, error) {
	tx := r.db.WithContext(ctx).
		Preload("Bags").
		Where("user_id = ?", userID)

	if date != nil {
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		tx = tx.Where("date >= ? AND date < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}

	var entries []model.MerchantEntry
	if err := tx.Order("created_at desc").Find(&entries).Error; err != nil {
		return []model.MerchantEntry{}, err
	}
	return entries, nil
}

func (r *MerchantGormRepository) FindByID(ctx context.Context, entryID string) (model.MerchantEntry, error) {
	var entry model.MerchantEntry

	err := r.db.WithContext(ctx).
		Preload("Bags").
		Where("id = ?", entryID).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MerchantEntry{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return model.MerchantEntry{}, err
	}
	return entry, nil
}
