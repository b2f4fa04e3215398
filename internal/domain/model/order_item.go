package model

import "time"

// 注文確定時点のカート明細の凍結コピー。
// 以後カートを操作しても注文側は変わらない。
type OrderItem struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID string `gorm:"type:uuid;not null;index" json:"product_id"`

	ProductNameSnapshot string  `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   float64 `gorm:"not null" json:"unit_price_snapshot"`
	UnitSnapshot        string  `gorm:"type:varchar(50)" json:"unit_snapshot"`
	Quantity            int64   `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
