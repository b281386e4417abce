package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 注文は全予約成功後にのみ作る。部分的な注文は存在しない
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64       `gorm:"not null;index" json:"user_id"`
	TotalPrice     int64       `gorm:"not null" json:"total_price"`
	TotalDiscount  int64       `gorm:"not null" json:"total_discount"`
	TotalCheckout  int64       `gorm:"not null" json:"total_checkout"`
	FeeShip        int64       `gorm:"not null;default:0" json:"fee_ship"`
	Shipping       string      `gorm:"type:jsonb;not null;default:'{}'" json:"shipping"`
	Payment        string      `gorm:"type:jsonb;not null;default:'{}'" json:"payment"`
	TrackingNumber string      `gorm:"type:varchar(40);not null" json:"tracking_number"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt      time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
