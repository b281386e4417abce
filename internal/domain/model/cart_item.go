package model

import "time"

// unit_price_snapshotは追加時点の価格。checkoutはサーバ側の現在価格で再計算する
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID         int64     `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	ShopID            int64     `gorm:"not null;index" json:"shop_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
