package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) DB() *gorm.DB {
	return r.db
}

// NextOrderNumber 在事务内生成下一个单号
// 对 (前缀, 日期) 作用域的最大单号行加排他锁后派生下一个值，
// 避免两个并发创建算出同一个"下一号"；必须在创建单据的同一事务内调用
func (r *OrderRepository) NextOrderNumber(tx *gorm.DB, prefix string, today time.Time) (string, error) {
	pattern := engine.OrderNumberPattern(prefix, today)

	query := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	switch prefix {
	case engine.PrefixWorkOrder:
		query = query.Model(&entity.WorkOrder{})
	default:
		query = query.Model(&entity.ManufacturingOrder{})
	}

	var numbers []string
	err := query.Where("order_number LIKE ?", pattern).
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error
	if err != nil {
		return "", err
	}

	last := ""
	if len(numbers) > 0 {
		last = numbers[0]
	}
	return engine.NextOrderNumber(prefix, today, last)
}

// CreateMO 创建制造订单
// 并发首单时 (前缀, 日期) 作用域为空，FOR UPDATE 无行可锁，
// 两个事务会派生同一个单号；唯一索引兜底，冲突翻译为 ErrDuplicate
func (r *OrderRepository) CreateMO(tx *gorm.DB, mo *entity.ManufacturingOrder) error {
	return translateDuplicate(tx.Create(mo).Error)
}

// FindMOByID 根据ID查找制造订单，带未删除的工单
func (r *OrderRepository) FindMOByID(ctx context.Context, id string) (*entity.ManufacturingOrder, error) {
	var mo entity.ManufacturingOrder
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("BOM").
		Preload("WorkOrders", activeChildren).
		Where("deleted_at IS NULL").
		First(&mo, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &mo, nil
}

// MOListParams 制造订单列表过滤条件
type MOListParams struct {
	ProductID string
	Status    entity.OrderStatus
	Priority  entity.Priority
	Page      int
	PageSize  int
}

// ListMO 制造订单列表
func (r *OrderRepository) ListMO(ctx context.Context, params MOListParams) ([]entity.ManufacturingOrder, int64, error) {
	var orders []entity.ManufacturingOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ManufacturingOrder{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Product").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&orders).Error
	return orders, total, err
}

// UpdateMO 更新制造订单
func (r *OrderRepository) UpdateMO(ctx context.Context, mo *entity.ManufacturingOrder) error {
	return r.db.WithContext(ctx).Save(mo).Error
}

// CountMOByStatus 按状态统计制造订单
func (r *OrderRepository) CountMOByStatus(ctx context.Context, status entity.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ManufacturingOrder{}).
		Where("status = ? AND deleted_at IS NULL", status).
		Count(&count).Error
	return count, err
}

// RecentMO 最近创建的制造订单
func (r *OrderRepository) RecentMO(ctx context.Context, limit int) ([]entity.ManufacturingOrder, error) {
	var orders []entity.ManufacturingOrder
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// UpcomingMO 按计划完工日期最近的在途制造订单
func (r *OrderRepository) UpcomingMO(ctx context.Context, limit int) ([]entity.ManufacturingOrder, error) {
	var orders []entity.ManufacturingOrder
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("deleted_at IS NULL AND status NOT IN ?", []entity.OrderStatus{entity.MOStatusDone, entity.MOStatusCanceled}).
		Order("planned_end_date ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// CreateWO 创建工单
func (r *OrderRepository) CreateWO(tx *gorm.DB, wo *entity.WorkOrder) error {
	return translateDuplicate(tx.Create(wo).Error)
}

// FindWOByID 根据ID查找工单
func (r *OrderRepository) FindWOByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("BOMOperation").
		Where("deleted_at IS NULL").
		First(&wo, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &wo, nil
}

// WOListParams 工单列表过滤条件
type WOListParams struct {
	ManufacturingOrderID string
	Status               entity.WorkOrderStatus
	AssignedOperatorID   string
	Page                 int
	PageSize             int
}

// ListWO 工单列表
func (r *OrderRepository) ListWO(ctx context.Context, params WOListParams) ([]entity.WorkOrder, int64, error) {
	var orders []entity.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{}).Where("deleted_at IS NULL")
	if params.ManufacturingOrderID != "" {
		query = query.Where("manufacturing_order_id = ?", params.ManufacturingOrderID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.AssignedOperatorID != "" {
		query = query.Where("assigned_operator_id = ?", params.AssignedOperatorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&orders).Error
	return orders, total, err
}

// ActiveWOForOperator 操作工名下未到终态的工单
func (r *OrderRepository) ActiveWOForOperator(ctx context.Context, operatorID string, page, pageSize int) ([]entity.WorkOrder, int64, error) {
	var orders []entity.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{}).
		Where("assigned_operator_id = ? AND deleted_at IS NULL", operatorID).
		Where("status NOT IN ?", []entity.WorkOrderStatus{entity.WOStatusCompleted, entity.WOStatusCanceled})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("BOMOperation").
		Order("created_at").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// UpdateWO 更新工单
func (r *OrderRepository) UpdateWO(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Save(wo).Error
}

// SiblingsForUpdate 在事务内锁定并读取制造订单下全部未删除工单
// 级联判定读取的是此刻的兄弟状态，加锁保证判定与后续MO更新原子
func (r *OrderRepository) SiblingsForUpdate(tx *gorm.DB, manufacturingOrderID string) ([]entity.WorkOrder, error) {
	var siblings []entity.WorkOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("manufacturing_order_id = ? AND deleted_at IS NULL", manufacturingOrderID).
		Find(&siblings).Error
	return siblings, err
}

// LockMO 在事务内锁定制造订单行
func (r *OrderRepository) LockMO(tx *gorm.DB, id string) (*entity.ManufacturingOrder, error) {
	var mo entity.ManufacturingOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deleted_at IS NULL").
		First(&mo, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &mo, nil
}

// LockWO 在事务内对工单行加排他锁，并发状态流转按提交顺序依次校验
func (r *OrderRepository) LockWO(tx *gorm.DB, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deleted_at IS NULL").
		First(&wo, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &wo, nil
}
