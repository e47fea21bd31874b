package entity

import "github.com/shopspring/decimal"

// BOM 物料清单，版本在同一产品下唯一
// TotalCost 为派生字段，子项变更时由成本引擎全量重算
type BOM struct {
	Base
	Name      string          `json:"name" gorm:"size:255;not null"`
	ProductID string          `json:"product_id" gorm:"size:36;not null;uniqueIndex:idx_boms_product_version"`
	Version   string          `json:"version" gorm:"size:50;not null;uniqueIndex:idx_boms_product_version"`
	IsActive  bool            `json:"is_active" gorm:"default:true"`
	TotalCost decimal.Decimal `json:"total_cost" gorm:"type:decimal(10,2);not null;default:0"`

	Product    *Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Components []BOMComponent `json:"components,omitempty" gorm:"foreignKey:BOMID"`
	Operations []BOMOperation `json:"operations,omitempty" gorm:"foreignKey:BOMID"`
}

func (BOM) TableName() string {
	return "boms"
}

// BOMComponent BOM 物料行
type BOMComponent struct {
	Base
	BOMID     string          `json:"bom_id" gorm:"size:36;not null;index"`
	ProductID string          `json:"product_id" gorm:"size:36;not null"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"type:decimal(10,3);not null"`
	UnitCost  decimal.Decimal `json:"unit_cost" gorm:"type:decimal(10,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (BOMComponent) TableName() string {
	return "bom_components"
}

// BOMOperation BOM 工序行，sequence 定义执行顺序
type BOMOperation struct {
	Base
	BOMID        string          `json:"bom_id" gorm:"size:36;not null;index"`
	WorkCenterID string          `json:"work_center_id" gorm:"size:36;not null"`
	Sequence     int             `json:"sequence" gorm:"not null"`
	Description  string          `json:"description" gorm:"type:text;not null"`
	Duration     int             `json:"duration" gorm:"not null"`             // 分钟
	SetupTime    int             `json:"setup_time" gorm:"not null;default:0"` // 分钟
	CostPerHour  decimal.Decimal `json:"cost_per_hour" gorm:"type:decimal(10,2);not null"`

	WorkCenter *WorkCenter `json:"work_center,omitempty" gorm:"foreignKey:WorkCenterID"`
}

func (BOMOperation) TableName() string {
	return "bom_operations"
}
