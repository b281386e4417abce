package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductType string

const (
	ProductTypeClothing    ProductType = "clothing"
	ProductTypeElectronics ProductType = "electronics"
	ProductTypeFurniture   ProductType = "furniture"
)

// 商品は1テーブル。種別はtype列、種別ごとの属性はJSONで持つ
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      int64          `gorm:"not null;index" json:"shop_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Type        ProductType    `gorm:"type:varchar(20);not null;index" json:"type"`
	Attributes  string         `gorm:"type:jsonb;not null;default:'{}'" json:"attributes"`
	Price       int64          `gorm:"not null" json:"price"`
	Thumb       string         `gorm:"type:varchar(255)" json:"thumb"`
	IsDraft     bool           `gorm:"not null;default:true;index" json:"is_draft"`
	IsPublished bool           `gorm:"not null;default:false;index" json:"is_published"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
