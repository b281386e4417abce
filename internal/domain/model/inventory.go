package model

import "time"

// 商品×ショップごとの在庫。stockが正で、予約はinventory_reservationsに積む
type Inventory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_inventory_product_shop" json:"product_id"`
	ShopID    int64     `gorm:"not null;uniqueIndex:idx_inventory_product_shop" json:"shop_id"`
	Stock     int64     `gorm:"not null" json:"stock"`
	Location  string    `gorm:"type:varchar(255);not null;default:'unknown'" json:"location"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type ReservationStatus string

const (
	ReservationStatusActive ReservationStatus = "active"
	ReservationStatusVoid   ReservationStatus = "void"
)

// 予約は監査用の記録。在庫の正は常にinventories.stock
// rollbackはidで特定してvoid化する（二重戻しで在庫が増えない）
type InventoryReservation struct {
	ID        string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID int64             `gorm:"not null;index" json:"product_id"`
	CartID    int64             `gorm:"not null;index" json:"cart_id"`
	Quantity  int64             `gorm:"not null" json:"quantity"`
	Status    ReservationStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
}
