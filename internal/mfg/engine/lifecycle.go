package engine

import "github.com/DeathRay00/trackmint/internal/mfg/entity"

// workOrderTransitions 工单状态流转表，未列出的边一律非法
// Completed / Canceled 为终态，没有出边
var workOrderTransitions = map[entity.WorkOrderStatus][]entity.WorkOrderStatus{
	entity.WOStatusReady:     {entity.WOStatusStarted, entity.WOStatusCanceled},
	entity.WOStatusStarted:   {entity.WOStatusPaused, entity.WOStatusCompleted, entity.WOStatusCanceled},
	entity.WOStatusPaused:    {entity.WOStatusStarted, entity.WOStatusCanceled},
	entity.WOStatusCompleted: {},
	entity.WOStatusCanceled:  {},
}

// CanTransition 工单能否从 current 流转到 requested
func CanTransition(current, requested entity.WorkOrderStatus) bool {
	for _, next := range workOrderTransitions[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// Transition 校验状态流转，非法流转返回 INVALID_STATUS_TRANSITION
func Transition(current, requested entity.WorkOrderStatus) error {
	if !CanTransition(current, requested) {
		return NewInvalidTransition(current, requested)
	}
	return nil
}

// IsTerminal 是否为终态
func IsTerminal(status entity.WorkOrderStatus) bool {
	return status == entity.WOStatusCompleted || status == entity.WOStatusCanceled
}

// AllSiblingsCompleted 制造订单级联判定：全部未删除工单均已完工时为真
// 只读取调用时刻的兄弟工单状态，不追溯早先的流转
func AllSiblingsCompleted(workOrders []entity.WorkOrder) bool {
	for i := range workOrders {
		if workOrders[i].IsRetired() {
			continue
		}
		if workOrders[i].Status != entity.WOStatusCompleted {
			return false
		}
	}
	return true
}
