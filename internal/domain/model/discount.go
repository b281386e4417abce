package model

import "time"

type DiscountType string

const (
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
	DiscountTypePercentage  DiscountType = "percentage"
)

type DiscountAppliesTo string

const (
	DiscountAppliesAll      DiscountAppliesTo = "all"
	DiscountAppliesSpecific DiscountAppliesTo = "specific"
)

// ショップ単位のクーポン。codeはショップ内で一意
type Discount struct {
	ID              int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID          int64             `gorm:"not null;uniqueIndex:idx_discount_shop_code" json:"shop_id"`
	Name            string            `gorm:"type:varchar(255);not null" json:"name"`
	Description     string            `gorm:"type:text" json:"description"`
	Code            string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_discount_shop_code" json:"code"`
	Type            DiscountType      `gorm:"type:varchar(20);not null" json:"type"`
	Value           int64             `gorm:"not null" json:"value"`
	MaxValue        int64             `gorm:"not null;default:0" json:"max_value"`
	MaxUsage        int64             `gorm:"not null" json:"max_usage"`
	UsageCount      int64             `gorm:"not null;default:0" json:"usage_count"`
	MaxUsagePerUser int64             `gorm:"not null" json:"max_usage_per_user"`
	MinOrderValue   int64             `gorm:"not null;default:0" json:"min_order_value"`
	AppliesTo       DiscountAppliesTo `gorm:"type:varchar(20);not null" json:"applies_to"`
	ProductIDs      string            `gorm:"type:jsonb;not null;default:'[]'" json:"product_ids"`
	StartDate       time.Time         `gorm:"not null" json:"start_date"`
	EndDate         time.Time         `gorm:"not null" json:"end_date"`
	IsActive        bool              `gorm:"not null;default:false" json:"is_active"`
	CreatedAt       time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
