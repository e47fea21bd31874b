package engine

import (
	"github.com/shopspring/decimal"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

// StockState 应用移动后的库存状态（数量 + 移动加权平均成本）
type StockState struct {
	Quantity int
	UnitCost decimal.Decimal
}

// ApplyMove 对产品库存应用一次移动，返回新的数量与平均成本，不修改入参
//
// Receipt: 数量必须为正；新平均成本 = (旧数量×旧成本 + 入库数量×入库成本) / 新数量，
// 保留两位小数。新数量不为正时（此前负调整导致）成本保持不变。
// Issue: 数量必须为正且不超过当前库存，否则返回 INSUFFICIENT_STOCK，状态不变。
// Adjustment: 数量可正可负，成本不变。负调整没有下限检查，可能把库存调成负数。
//
// 函数是纯的，不落库；调用方负责在同一事务内锁定产品行、写入流水并保存产品
func ApplyMove(product *entity.Product, moveType entity.MoveType, quantity int, unitCost decimal.Decimal) (StockState, error) {
	current := StockState{Quantity: product.StockQuantity, UnitCost: product.UnitCost}

	switch moveType {
	case entity.MoveReceipt:
		if quantity <= 0 {
			return current, NewValidation("Receipt quantity must be a positive number", "quantity", quantity)
		}
		newQty := current.Quantity + quantity
		newCost := current.UnitCost
		if newQty > 0 {
			oldValue := decimal.NewFromInt(int64(current.Quantity)).Mul(current.UnitCost)
			inValue := decimal.NewFromInt(int64(quantity)).Mul(unitCost)
			newCost = oldValue.Add(inValue).Div(decimal.NewFromInt(int64(newQty))).Round(2)
		}
		return StockState{Quantity: newQty, UnitCost: newCost}, nil

	case entity.MoveIssue:
		if quantity <= 0 {
			return current, NewValidation("Issue quantity must be a positive number", "quantity", quantity)
		}
		if quantity > current.Quantity {
			return current, NewInsufficientStock(product.ID, quantity, current.Quantity)
		}
		return StockState{Quantity: current.Quantity - quantity, UnitCost: current.UnitCost}, nil

	case entity.MoveAdjustment:
		if quantity == 0 {
			return current, NewValidation("Adjustment quantity must be non-zero", "quantity", quantity)
		}
		return StockState{Quantity: current.Quantity + quantity, UnitCost: current.UnitCost}, nil
	}

	return current, NewValidation("Unknown stock move type", "move_type", string(moveType))
}
