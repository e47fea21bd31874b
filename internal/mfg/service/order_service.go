package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
)

// 单次制造订单数量上限
const maxOrderQuantity = 10000

// OrderService 制造订单与工单生命周期
type OrderService struct {
	orderRepo   *repository.OrderRepository
	productRepo *repository.ProductRepository
	bomRepo     *repository.BOMRepository
}

func NewOrderService(orderRepo *repository.OrderRepository, productRepo *repository.ProductRepository, bomRepo *repository.BOMRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo, bomRepo: bomRepo}
}

type CreateMORequest struct {
	ProductID        string          `json:"product_id" binding:"required"`
	BOMID            string          `json:"bom_id" binding:"required"`
	Quantity         int             `json:"quantity" binding:"required"`
	Priority         entity.Priority `json:"priority"`
	PlannedStartDate time.Time       `json:"planned_start_date" binding:"required"`
	PlannedEndDate   time.Time       `json:"planned_end_date" binding:"required"`
	AssignedToID     string          `json:"assigned_to_id"`
	Notes            string          `json:"notes"`
}

// CreateMO 创建制造订单，单号与插入在同一事务内生成
func (s *OrderService) CreateMO(ctx context.Context, actorID string, req *CreateMORequest) (*entity.ManufacturingOrder, error) {
	if req.Quantity <= 0 {
		return nil, engine.NewValidation("Order quantity must be a positive number", "quantity", req.Quantity)
	}
	if req.Quantity > maxOrderQuantity {
		return nil, engine.NewQuantityLimitExceeded(req.Quantity, maxOrderQuantity)
	}
	if req.PlannedEndDate.Before(req.PlannedStartDate) {
		return nil, engine.NewValidation("Planned end date must not be before planned start date", "planned_end_date", req.PlannedEndDate)
	}
	if req.Priority == "" {
		req.Priority = entity.PriorityNormal
	}
	if !req.Priority.Valid() {
		return nil, engine.NewValidation("Unknown priority", "priority", req.Priority)
	}

	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Product", req.ProductID)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	bom, err := s.bomRepo.FindByID(ctx, req.BOMID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("BOM", req.BOMID)
		}
		return nil, fmt.Errorf("find bom: %w", err)
	}
	if bom.ProductID != req.ProductID {
		return nil, engine.NewValidation("BOM does not belong to the given product", "bom_id", req.BOMID)
	}

	now := time.Now()
	mo := &entity.ManufacturingOrder{
		Base:             entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		ProductID:        req.ProductID,
		BOMID:            req.BOMID,
		Quantity:         req.Quantity,
		Status:           entity.MOStatusPlanned,
		Priority:         req.Priority,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		AssignedToID:     req.AssignedToID,
		Notes:            req.Notes,
	}

	err = s.orderRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.orderRepo.NextOrderNumber(tx, engine.PrefixManufacturingOrder, now)
		if err != nil {
			return fmt.Errorf("next order number: %w", err)
		}
		mo.OrderNumber = number
		if err := s.orderRepo.CreateMO(tx, mo); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return engine.NewConflict("Order number already taken, please retry", "order_number", number)
			}
			return fmt.Errorf("create manufacturing order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mo, nil
}

// GetMO 制造订单详情
func (s *OrderService) GetMO(ctx context.Context, id string) (*entity.ManufacturingOrder, error) {
	mo, err := s.orderRepo.FindMOByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Manufacturing order", id)
		}
		return nil, fmt.Errorf("find manufacturing order: %w", err)
	}
	return mo, nil
}

// ListMO 制造订单列表
func (s *OrderService) ListMO(ctx context.Context, params repository.MOListParams) ([]entity.ManufacturingOrder, int64, error) {
	return s.orderRepo.ListMO(ctx, params)
}

type UpdateMORequest struct {
	Quantity         *int             `json:"quantity"`
	Priority         *entity.Priority `json:"priority"`
	PlannedStartDate *time.Time       `json:"planned_start_date"`
	PlannedEndDate   *time.Time       `json:"planned_end_date"`
	AssignedToID     *string          `json:"assigned_to_id"`
	Notes            *string          `json:"notes"`
}

// UpdateMO 更新制造订单，终态与在途订单限制可改字段
func (s *OrderService) UpdateMO(ctx context.Context, id, actorID string, req *UpdateMORequest) (*entity.ManufacturingOrder, error) {
	mo, err := s.GetMO(ctx, id)
	if err != nil {
		return nil, err
	}
	if mo.Status == entity.MOStatusDone || mo.Status == entity.MOStatusCanceled {
		return nil, engine.NewBusinessLogic("Cannot modify a finished or canceled manufacturing order")
	}

	if req.Quantity != nil {
		if mo.Status != entity.MOStatusPlanned {
			return nil, engine.NewBusinessLogic("Quantity can only be changed while the order is planned")
		}
		if *req.Quantity <= 0 {
			return nil, engine.NewValidation("Order quantity must be a positive number", "quantity", *req.Quantity)
		}
		if *req.Quantity > maxOrderQuantity {
			return nil, engine.NewQuantityLimitExceeded(*req.Quantity, maxOrderQuantity)
		}
		mo.Quantity = *req.Quantity
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, engine.NewValidation("Unknown priority", "priority", *req.Priority)
		}
		mo.Priority = *req.Priority
	}
	if req.PlannedStartDate != nil {
		mo.PlannedStartDate = *req.PlannedStartDate
	}
	if req.PlannedEndDate != nil {
		mo.PlannedEndDate = *req.PlannedEndDate
	}
	if mo.PlannedEndDate.Before(mo.PlannedStartDate) {
		return nil, engine.NewValidation("Planned end date must not be before planned start date", "planned_end_date", mo.PlannedEndDate)
	}
	if req.AssignedToID != nil {
		mo.AssignedToID = *req.AssignedToID
	}
	if req.Notes != nil {
		mo.Notes = *req.Notes
	}
	mo.UpdatedByID = actorID

	if err := s.orderRepo.UpdateMO(ctx, mo); err != nil {
		return nil, fmt.Errorf("update manufacturing order: %w", err)
	}
	return mo, nil
}

// CancelMO 取消制造订单并取消其下所有未到终态的工单
func (s *OrderService) CancelMO(ctx context.Context, id, actorID string) (*entity.ManufacturingOrder, error) {
	var result *entity.ManufacturingOrder
	err := s.orderRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mo, err := s.orderRepo.LockMO(tx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return engine.NewNotFound("Manufacturing order", id)
			}
			return fmt.Errorf("lock manufacturing order: %w", err)
		}
		if mo.Status == entity.MOStatusDone {
			return engine.NewBusinessLogic("Cannot cancel a finished manufacturing order")
		}
		if mo.Status == entity.MOStatusCanceled {
			return engine.NewBusinessLogic("Manufacturing order is already canceled")
		}

		siblings, err := s.orderRepo.SiblingsForUpdate(tx, id)
		if err != nil {
			return fmt.Errorf("lock work orders: %w", err)
		}
		now := time.Now()
		for i := range siblings {
			if engine.IsTerminal(siblings[i].Status) {
				continue
			}
			siblings[i].Status = entity.WOStatusCanceled
			siblings[i].UpdatedAt = now
			siblings[i].UpdatedByID = actorID
			if err := tx.Save(&siblings[i]).Error; err != nil {
				return fmt.Errorf("cancel work order: %w", err)
			}
		}

		mo.Status = entity.MOStatusCanceled
		mo.UpdatedAt = now
		mo.UpdatedByID = actorID
		if err := tx.Save(mo).Error; err != nil {
			return fmt.Errorf("cancel manufacturing order: %w", err)
		}
		result = mo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteMO 软删除制造订单
func (s *OrderService) DeleteMO(ctx context.Context, id, actorID string) error {
	mo, err := s.GetMO(ctx, id)
	if err != nil {
		return err
	}
	if mo.Status == entity.MOStatusInProgress {
		return engine.NewBusinessLogic("Cannot delete a manufacturing order that is in progress")
	}
	mo.Retire(time.Now(), actorID)
	if err := s.orderRepo.UpdateMO(ctx, mo); err != nil {
		return fmt.Errorf("delete manufacturing order: %w", err)
	}
	return nil
}

type CreateWORequest struct {
	ManufacturingOrderID string `json:"manufacturing_order_id" binding:"required"`
	BOMOperationID       string `json:"bom_operation_id" binding:"required"`
	AssignedOperatorID   string `json:"assigned_operator_id"`
	Comments             string `json:"comments"`
}

// CreateWO 创建工单，计划工时取自BOM工序的加工时长加准备时长
func (s *OrderService) CreateWO(ctx context.Context, actorID string, req *CreateWORequest) (*entity.WorkOrder, error) {
	mo, err := s.GetMO(ctx, req.ManufacturingOrderID)
	if err != nil {
		return nil, err
	}
	if mo.Status == entity.MOStatusDone || mo.Status == entity.MOStatusCanceled {
		return nil, engine.NewBusinessLogic("Cannot add work orders to a finished or canceled manufacturing order")
	}

	operation, err := s.bomRepo.FindOperationByID(ctx, req.BOMOperationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("BOM operation", req.BOMOperationID)
		}
		return nil, fmt.Errorf("find bom operation: %w", err)
	}
	if operation.BOMID != mo.BOMID {
		return nil, engine.NewValidation("BOM operation does not belong to the order's BOM", "bom_operation_id", req.BOMOperationID)
	}

	now := time.Now()
	wo := &entity.WorkOrder{
		Base:                 entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		ManufacturingOrderID: mo.ID,
		BOMOperationID:       operation.ID,
		Status:               entity.WOStatusReady,
		AssignedOperatorID:   req.AssignedOperatorID,
		PlannedDuration:      operation.Duration + operation.SetupTime,
		Comments:             req.Comments,
	}

	err = s.orderRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.orderRepo.NextOrderNumber(tx, engine.PrefixWorkOrder, now)
		if err != nil {
			return fmt.Errorf("next order number: %w", err)
		}
		wo.OrderNumber = number
		if err := s.orderRepo.CreateWO(tx, wo); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return engine.NewConflict("Order number already taken, please retry", "order_number", number)
			}
			return fmt.Errorf("create work order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// GetWO 工单详情
func (s *OrderService) GetWO(ctx context.Context, id string) (*entity.WorkOrder, error) {
	wo, err := s.orderRepo.FindWOByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Work order", id)
		}
		return nil, fmt.Errorf("find work order: %w", err)
	}
	return wo, nil
}

// ListWO 工单列表
func (s *OrderService) ListWO(ctx context.Context, params repository.WOListParams) ([]entity.WorkOrder, int64, error) {
	return s.orderRepo.ListWO(ctx, params)
}

// MyTasks 指定操作工名下未到终态的工单
func (s *OrderService) MyTasks(ctx context.Context, operatorID string, page, pageSize int) ([]entity.WorkOrder, int64, error) {
	return s.orderRepo.ActiveWOForOperator(ctx, operatorID, page, pageSize)
}

type UpdateWORequest struct {
	AssignedOperatorID *string `json:"assigned_operator_id"`
	Comments           *string `json:"comments"`
	Issues             *string `json:"issues"`
}

// UpdateWO 更新工单非状态字段
func (s *OrderService) UpdateWO(ctx context.Context, id, actorID string, req *UpdateWORequest) (*entity.WorkOrder, error) {
	wo, err := s.GetWO(ctx, id)
	if err != nil {
		return nil, err
	}
	if engine.IsTerminal(wo.Status) {
		return nil, engine.NewBusinessLogic("Cannot modify a completed or canceled work order")
	}

	if req.AssignedOperatorID != nil {
		wo.AssignedOperatorID = *req.AssignedOperatorID
	}
	if req.Comments != nil {
		wo.Comments = *req.Comments
	}
	if req.Issues != nil {
		wo.Issues = *req.Issues
	}
	wo.UpdatedByID = actorID

	if err := s.orderRepo.UpdateWO(ctx, wo); err != nil {
		return nil, fmt.Errorf("update work order: %w", err)
	}
	return wo, nil
}

type UpdateWOStatusRequest struct {
	Status entity.WorkOrderStatus `json:"status" binding:"required"`
	Notes  string                 `json:"notes"`
}

// UpdateWOStatus 工单状态流转
// 非法流转整单拒绝；操作工只能流转自己名下的工单；
// 首个工单开工时制造订单转为 In Progress，全部工单完工时级联置 Done
func (s *OrderService) UpdateWOStatus(ctx context.Context, id string, actor *entity.User, req *UpdateWOStatusRequest) (*entity.WorkOrder, error) {
	var result *entity.WorkOrder
	err := s.orderRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定工单行，并发流转只能有一个事务看到旧状态
		locked, err := s.orderRepo.LockWO(tx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return engine.NewNotFound("Work order", id)
			}
			return fmt.Errorf("find work order: %w", err)
		}
		wo := *locked

		if actor.Role == entity.RoleOperator && wo.AssignedOperatorID != actor.ID {
			return engine.NewPermissionDenied("update the status of a work order assigned to another operator")
		}
		if err := engine.Transition(wo.Status, req.Status); err != nil {
			return err
		}

		now := time.Now()
		previous := wo.Status
		wo.Status = req.Status
		wo.UpdatedAt = now
		wo.UpdatedByID = actor.ID

		switch req.Status {
		case entity.WOStatusStarted:
			if wo.StartTime == nil {
				wo.StartTime = &now
			}
		case entity.WOStatusCompleted:
			wo.EndTime = &now
			if wo.StartTime != nil {
				minutes := int(now.Sub(*wo.StartTime).Minutes())
				wo.ActualDuration = &minutes
			}
		}
		if req.Notes != "" {
			stamp := fmt.Sprintf("[%s] %s -> %s: %s", now.Format("2006-01-02 15:04"), previous, req.Status, req.Notes)
			if wo.Comments != "" {
				wo.Comments += "\n"
			}
			wo.Comments += stamp
		}

		if err := tx.Save(&wo).Error; err != nil {
			return fmt.Errorf("update work order: %w", err)
		}

		if err := s.cascadeToMO(tx, &wo, now, actor.ID); err != nil {
			return err
		}
		result = &wo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cascadeToMO 工单流转后回写制造订单状态
func (s *OrderService) cascadeToMO(tx *gorm.DB, wo *entity.WorkOrder, now time.Time, actorID string) error {
	mo, err := s.orderRepo.LockMO(tx, wo.ManufacturingOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 工单存在但订单被删，流转本身仍然有效
			return nil
		}
		return fmt.Errorf("lock manufacturing order: %w", err)
	}

	changed := false
	switch {
	case wo.Status == entity.WOStatusStarted && mo.Status == entity.MOStatusPlanned:
		mo.Status = entity.MOStatusInProgress
		mo.ActualStartDate = &now
		changed = true
	case wo.Status == entity.WOStatusCompleted:
		siblings, err := s.orderRepo.SiblingsForUpdate(tx, mo.ID)
		if err != nil {
			return fmt.Errorf("lock work orders: %w", err)
		}
		if engine.AllSiblingsCompleted(siblings) && mo.Status != entity.MOStatusDone {
			mo.Status = entity.MOStatusDone
			mo.ActualEndDate = &now
			changed = true
		}
	}

	if !changed {
		return nil
	}
	mo.UpdatedAt = now
	mo.UpdatedByID = actorID
	if err := tx.Save(mo).Error; err != nil {
		return fmt.Errorf("update manufacturing order: %w", err)
	}
	return nil
}

// DashboardStats 制造概览统计
type DashboardStats struct {
	TotalOrders    int64                        `json:"total_orders"`
	ByStatus       map[entity.OrderStatus]int64 `json:"by_status"`
	RecentOrders   []entity.ManufacturingOrder  `json:"recent_orders"`
	UpcomingOrders []entity.ManufacturingOrder  `json:"upcoming_orders"`
}

// Dashboard 按状态统计制造订单并给出最近创建与临近交期的订单
func (s *OrderService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{ByStatus: make(map[entity.OrderStatus]int64)}
	for _, status := range []entity.OrderStatus{
		entity.MOStatusPlanned, entity.MOStatusInProgress, entity.MOStatusDone, entity.MOStatusCanceled,
	} {
		count, err := s.orderRepo.CountMOByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("count orders: %w", err)
		}
		stats.ByStatus[status] = count
		stats.TotalOrders += count
	}

	recent, err := s.orderRepo.RecentMO(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	stats.RecentOrders = recent

	upcoming, err := s.orderRepo.UpcomingMO(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("upcoming orders: %w", err)
	}
	stats.UpcomingOrders = upcoming
	return stats, nil
}
