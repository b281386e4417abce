package model

import "time"

// 注文時点のスナップショット
type OrderItem struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64     `gorm:"not null;index" json:"order_id"`
	ProductID    int64     `gorm:"not null" json:"product_id"`
	ShopID       int64     `gorm:"not null" json:"shop_id"`
	NameSnapshot string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice    int64     `gorm:"not null" json:"unit_price"`
	Quantity     int64     `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
