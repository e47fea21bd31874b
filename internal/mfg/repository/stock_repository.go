package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) DB() *gorm.DB {
	return r.db
}

// CreateMove 在事务内追加一条库存流水
func (r *StockRepository) CreateMove(tx *gorm.DB, move *entity.StockMove) error {
	return tx.Create(move).Error
}

// FindMoveByID 根据ID查找库存流水
func (r *StockRepository) FindMoveByID(ctx context.Context, id string) (*entity.StockMove, error) {
	var move entity.StockMove
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Location").
		Where("deleted_at IS NULL").
		First(&move, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &move, nil
}

// MoveListParams 库存流水列表过滤条件
type MoveListParams struct {
	ProductID  string
	MoveType   entity.MoveType
	LocationID string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PageSize   int
}

// ListMoves 库存流水列表
func (r *StockRepository) ListMoves(ctx context.Context, params MoveListParams) ([]entity.StockMove, int64, error) {
	var moves []entity.StockMove
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockMove{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.MoveType != "" {
		query = query.Where("move_type = ?", params.MoveType)
	}
	if params.LocationID != "" {
		query = query.Where("location_id = ?", params.LocationID)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&moves).Error
	return moves, total, err
}

// UpdateMove 更新库存流水（仅调用方允许改 Notes，流水本身不可变）
func (r *StockRepository) UpdateMove(ctx context.Context, move *entity.StockMove) error {
	return r.db.WithContext(ctx).Save(move).Error
}

// SumMoves 统计某产品某移动类型在时间区间内的数量合计
// from / to 任一为 nil 表示该端不设界
func (r *StockRepository) SumMoves(ctx context.Context, productID string, moveType entity.MoveType, from, to *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockMove{}).
		Where("product_id = ? AND move_type = ? AND deleted_at IS NULL", productID, moveType)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var total *int64
	if err := query.Select("SUM(quantity)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// MovesExistForLocation 库位是否被未删除的流水引用
func (r *StockRepository) MovesExistForLocation(ctx context.Context, locationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.StockMove{}).
		Where("location_id = ? AND deleted_at IS NULL", locationID).
		Count(&count).Error
	return count > 0, err
}

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create 创建库位
func (r *LocationRepository) Create(ctx context.Context, loc *entity.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

// FindByID 根据ID查找库位
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*entity.Location, error) {
	var loc entity.Location
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&loc, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &loc, nil
}

// CodeExists 编码是否已被其他库位占用
func (r *LocationRepository) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.Location{}).
		Where("code = ? AND deleted_at IS NULL", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// List 库位列表
func (r *LocationRepository) List(ctx context.Context, isActive *bool, page, pageSize int) ([]entity.Location, int64, error) {
	var locations []entity.Location
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Location{}).Where("deleted_at IS NULL")
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&locations).Error
	return locations, total, err
}

// Update 更新库位
func (r *LocationRepository) Update(ctx context.Context, loc *entity.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}
