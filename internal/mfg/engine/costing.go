package engine

import (
	"github.com/shopspring/decimal"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

var minutesPerHour = decimal.NewFromInt(60)

// CostBreakdown BOM 成本拆解
type CostBreakdown struct {
	MaterialCost   decimal.Decimal `json:"material_cost"`
	LaborCost      decimal.Decimal `json:"labor_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	ComponentCount int             `json:"component_count"`
	OperationCount int             `json:"operation_count"`
}

// RollUp 全量重算 BOM 成本，已软删除的子项不参与
//
// 物料成本 = Σ(数量 × 单价)，在求和后保留两位小数
// 人工成本 = Σ((工时+准备时间)/60 × 时薪)，同样在求和后取两位
// 求和满足交换律，结果与子项顺序无关
func RollUp(components []entity.BOMComponent, operations []entity.BOMOperation) CostBreakdown {
	material := decimal.Zero
	componentCount := 0
	for i := range components {
		if components[i].IsRetired() {
			continue
		}
		material = material.Add(components[i].Quantity.Mul(components[i].UnitCost))
		componentCount++
	}
	material = material.Round(2)

	labor := decimal.Zero
	operationCount := 0
	for i := range operations {
		op := &operations[i]
		if op.IsRetired() {
			continue
		}
		minutes := decimal.NewFromInt(int64(op.Duration + op.SetupTime))
		labor = labor.Add(minutes.Div(minutesPerHour).Mul(op.CostPerHour))
		operationCount++
	}
	labor = labor.Round(2)

	return CostBreakdown{
		MaterialCost:   material,
		LaborCost:      labor,
		TotalCost:      material.Add(labor),
		ComponentCount: componentCount,
		OperationCount: operationCount,
	}
}
