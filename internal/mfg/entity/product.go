package entity

import "github.com/shopspring/decimal"

// Product 产品（原材料、半成品、成品共用一张表）
// UnitCost 为移动加权平均成本，仅由库存引擎更新
type Product struct {
	Base
	Name          string          `json:"name" gorm:"size:255;not null"`
	SKU           string          `json:"sku" gorm:"size:100;not null;uniqueIndex"`
	Category      string          `json:"category" gorm:"size:100;not null"`
	UnitOfMeasure string          `json:"unit_of_measure" gorm:"size:50;not null"`
	UnitCost      decimal.Decimal `json:"unit_cost" gorm:"type:decimal(10,2);not null;default:0"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	ReorderLevel  int             `json:"reorder_level" gorm:"not null;default:0"`
	Description   string          `json:"description,omitempty" gorm:"type:text"`
	IsActive      bool            `json:"is_active" gorm:"default:true"`
}

func (Product) TableName() string {
	return "products"
}
