package entity

import "github.com/shopspring/decimal"

// MoveType 库存移动类型，闭集
type MoveType string

const (
	MoveReceipt    MoveType = "Receipt"
	MoveIssue      MoveType = "Issue"
	MoveAdjustment MoveType = "Adjustment"
)

// Valid 是否为合法移动类型
func (t MoveType) Valid() bool {
	switch t {
	case MoveReceipt, MoveIssue, MoveAdjustment:
		return true
	}
	return false
}

// OrderRef 库存移动关联的单据类型，闭集
type OrderRef string

const (
	RefManufacturingOrder OrderRef = "MO"
	RefWorkOrder          OrderRef = "WO"
)

// Valid 是否为合法单据类型
func (r OrderRef) Valid() bool {
	return r == RefManufacturingOrder || r == RefWorkOrder
}

// StockMove 库存移动流水，追加写入；落库后除 Notes 外不可修改
type StockMove struct {
	Base
	ProductID     string          `json:"product_id" gorm:"size:36;not null;index"`
	MoveType      MoveType        `json:"move_type" gorm:"size:20;not null"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitCost      decimal.Decimal `json:"unit_cost" gorm:"type:decimal(10,2);not null"`
	ReferenceID   string          `json:"reference_id,omitempty" gorm:"size:36"`
	ReferenceType OrderRef        `json:"reference_type,omitempty" gorm:"size:10"`
	LocationID    string          `json:"location_id" gorm:"size:36;not null"`
	Notes         string          `json:"notes,omitempty" gorm:"type:text"`

	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (StockMove) TableName() string {
	return "stock_moves"
}

// Location 库位，支持父子层级
type Location struct {
	Base
	Name             string `json:"name" gorm:"size:255;not null"`
	Code             string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Description      string `json:"description,omitempty" gorm:"type:text"`
	IsActive         bool   `json:"is_active" gorm:"default:true"`
	ParentLocationID string `json:"parent_location_id,omitempty" gorm:"size:36"`
}

func (Location) TableName() string {
	return "locations"
}
