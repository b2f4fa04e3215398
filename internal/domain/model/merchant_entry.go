package model

import "time"

// 仕入（計量）伝票。トリップ単位で袋ごとの重量を記録する。
type MerchantEntry struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	TripNo       string    `gorm:"type:varchar(50);not null" json:"trip_no"`
	MerchantName string    `gorm:"type:varchar(255);not null" json:"merchant_name"`
	Vegetable    string    `gorm:"type:varchar(255);not null" json:"vegetable"`

	// 単価（重量あたり）
	UnitPrice float64 `gorm:"not null" json:"price"`

	NoOfBags    int64   `gorm:"not null" json:"no_of_bags"`
	TotalWeight float64 `gorm:"not null" json:"weight"`

	// TotalWeight × UnitPrice。サーバー側で再計算して保存する
	Amount float64 `gorm:"not null" json:"amount"`

	Bags []MerchantBag `gorm:"foreignKey:EntryID" json:"bags"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type MerchantBag struct {
	ID      string  `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID string  `gorm:"type:uuid;not null;index" json:"entry_id"`
	BagNo   int64   `gorm:"not null" json:"bag_number"`
	Weight  float64 `gorm:"not null" json:"weight"`
}
