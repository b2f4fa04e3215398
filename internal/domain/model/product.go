package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`

	// 販売可能な残数量
	Stock int64 `gorm:"not null" json:"quantity"`

	Category string `gorm:"type:varchar(100);not null;index" json:"category"`
	ImageURL string `gorm:"type:text" json:"image"`

	// 販売単位（kg / bunch / head など）
	Unit string `gorm:"type:varchar(50);not null" json:"unit"`

	InStock   bool           `gorm:"not null;default:true" json:"in_stock"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
