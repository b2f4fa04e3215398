package repository

import (
	"context"

	"vegeapp/internal/domain/model"
	domainrepo "vegeapp/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *AuditLogGormRepository) List(ctx context.Context, f domainrepo.AuditLogFilter) ([]model.AuditLog, error) {
	tx := r.db.WithContext(ctx).Model(&model.AuditLog{})

	if f.ActorUserID != nil {
		tx = tx.Where("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		tx = tx.Where("action = ?", *f.Action)
	}
	if f.ResourceType != nil {
		tx = tx.Where("resource_type = ?", *f.ResourceType)
	}
	if f.ResourceID != nil {
		tx = tx.Where("resource_id = ?", *f.ResourceID)
	}
	if f.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		tx = tx.Where("created_at <= ?", *f.CreatedTo)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}

	var logs []model.AuditLog
	if err := tx.Order("created_at desc").Find(&logs).Error; err != nil {
		return []model.AuditLog{}, err
	}
	return logs, nil
}
