package entity

import "time"

// OrderStatus 制造订单状态
type OrderStatus string

const (
	MOStatusPlanned    OrderStatus = "Planned"
	MOStatusInProgress OrderStatus = "In Progress"
	MOStatusDone       OrderStatus = "Done"
	MOStatusCanceled   OrderStatus = "Canceled"
)

// WorkOrderStatus 工单状态
type WorkOrderStatus string

const (
	WOStatusReady     WorkOrderStatus = "Ready"
	WOStatusStarted   WorkOrderStatus = "Started"
	WOStatusPaused    WorkOrderStatus = "Paused"
	WOStatusCompleted WorkOrderStatus = "Completed"
	WOStatusCanceled  WorkOrderStatus = "Canceled"
)

// Priority 优先级
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ManufacturingOrder 制造订单：按指定BOM生产一定数量的产品
type ManufacturingOrder struct {
	Base
	OrderNumber      string      `json:"order_number" gorm:"size:100;not null;uniqueIndex"`
	ProductID        string      `json:"product_id" gorm:"size:36;not null;index"`
	BOMID            string      `json:"bom_id" gorm:"size:36;not null"`
	Quantity         int         `json:"quantity" gorm:"not null"`
	Status           OrderStatus `json:"status" gorm:"size:20;not null;default:Planned"`
	Priority         Priority    `json:"priority" gorm:"size:20;not null;default:Normal"`
	PlannedStartDate time.Time   `json:"planned_start_date" gorm:"not null"`
	PlannedEndDate   time.Time   `json:"planned_end_date" gorm:"not null"`
	ActualStartDate  *time.Time  `json:"actual_start_date,omitempty"`
	ActualEndDate    *time.Time  `json:"actual_end_date,omitempty"`
	AssignedToID     string      `json:"assigned_to_id,omitempty" gorm:"size:36"`
	Notes            string      `json:"notes,omitempty" gorm:"type:text"`

	Product    *Product    `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	BOM        *BOM        `json:"bom,omitempty" gorm:"foreignKey:BOMID"`
	WorkOrders []WorkOrder `json:"work_orders,omitempty" gorm:"foreignKey:ManufacturingOrderID"`
}

func (ManufacturingOrder) TableName() string {
	return "manufacturing_orders"
}

// WorkOrder 工单：制造订单下单个工序的一次执行
type WorkOrder struct {
	Base
	OrderNumber          string          `json:"order_number" gorm:"size:100;not null;uniqueIndex"`
	ManufacturingOrderID string          `json:"manufacturing_order_id" gorm:"size:36;not null;index"`
	BOMOperationID       string          `json:"bom_operation_id" gorm:"size:36;not null"`
	Status               WorkOrderStatus `json:"status" gorm:"size:20;not null;default:Ready"`
	AssignedOperatorID   string          `json:"assigned_operator_id,omitempty" gorm:"size:36"`
	PlannedDuration      int             `json:"planned_duration" gorm:"not null"` // 分钟
	ActualDuration       *int            `json:"actual_duration,omitempty"`        // 分钟
	StartTime            *time.Time      `json:"start_time,omitempty"`
	EndTime              *time.Time      `json:"end_time,omitempty"`
	Comments             string          `json:"comments,omitempty" gorm:"type:text"`
	Issues               string          `json:"issues,omitempty" gorm:"type:text"`

	ManufacturingOrder *ManufacturingOrder `json:"manufacturing_order,omitempty" gorm:"foreignKey:ManufacturingOrderID"`
	BOMOperation       *BOMOperation       `json:"bom_operation,omitempty" gorm:"foreignKey:BOMOperationID"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}
