package repository

import (
	"context"
	"errors"

	domainrepo "vegeapp/internal/repository"

	"gorm.io/gorm"
)

// マスタ7種のCRUDを1実装でまかなう。
// 前提：Tはid / user_idカラムを持つGORMモデル（IDはusecase側で採番済み）。
type MasterGormRepository[T any] struct {
	db *gorm.DB
}

func NewMasterGormRepository[T any](db *gorm.DB) *MasterGormRepository[T] {
	return &MasterGormRepository[T]{db: db}
}

func (r *MasterGormRepository[T]) Create(ctx context.Context, rec T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (r *MasterGormRepository[T]) ListByUserID(ctx context.Context, userID string) ([]T, error) {
	var recs []T

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&recs).Error
	if err != nil {
		return []T{}, err
	}
	return recs, nil
}

func (r *MasterGormRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var rec T

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		var zero T
		return zero, domainrepo.ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (r *MasterGormRepository[T]) Update(ctx context.Context, userID string, id string, rec T) error {
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(&rec)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}

func (r *MasterGormRepository[T]) Delete(ctx context.Context, userID string, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(new(T))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
