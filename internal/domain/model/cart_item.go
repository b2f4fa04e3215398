package model

import "time"

// カートの明細。同一カートに同一商品の行は1つまで。
// 追加時点の価格・名称・単位をスナップショットで必ず保存する。
// カタログが後から変わっても明細は影響を受けない。
type CartItem struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    string `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID string `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int64  `gorm:"not null" json:"quantity"`

	ProductNameSnapshot string  `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   float64 `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	UnitSnapshot        string  `gorm:"type:varchar(50)" json:"unit_snapshot"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
