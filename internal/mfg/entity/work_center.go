package entity

import "github.com/shopspring/decimal"

// WorkCenter 工作中心（机台/产线），按小时计费
type WorkCenter struct {
	Base
	Name        string          `json:"name" gorm:"size:255;not null"`
	Code        string          `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Capacity    decimal.Decimal `json:"capacity" gorm:"type:decimal(5,2);not null"` // 每天可用工时
	CostPerHour decimal.Decimal `json:"cost_per_hour" gorm:"type:decimal(10,2);not null"`
	Efficiency  decimal.Decimal `json:"efficiency" gorm:"type:decimal(5,2);not null;default:100"` // 百分比
	Description string          `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
}

func (WorkCenter) TableName() string {
	return "work_centers"
}
