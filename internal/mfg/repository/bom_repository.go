package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) DB() *gorm.DB {
	return r.db
}

func activeChildren(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// Create 创建BOM
func (r *BOMRepository) Create(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Create(bom).Error
}

// FindByID 根据ID查找BOM，带未删除的物料行与工序行
func (r *BOMRepository) FindByID(ctx context.Context, id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).
		Preload("Components", activeChildren).
		Preload("Components.Product").
		Preload("Operations", activeChildren).
		Preload("Operations.WorkCenter").
		Where("deleted_at IS NULL").
		First(&bom, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &bom, nil
}

// VersionExists 同一产品下版本是否已存在
func (r *BOMRepository) VersionExists(ctx context.Context, productID, version, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.BOM{}).
		Where("product_id = ? AND version = ? AND deleted_at IS NULL", productID, version)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// List BOM列表
func (r *BOMRepository) List(ctx context.Context, productID string, isActive *bool, page, pageSize int) ([]entity.BOM, int64, error) {
	var boms []entity.BOM
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BOM{}).Where("deleted_at IS NULL")
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Product").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&boms).Error
	return boms, total, err
}

// Update 更新BOM
func (r *BOMRepository) Update(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Save(bom).Error
}

// ActiveChildren 在事务内读取BOM当前未删除的物料行与工序行，供成本重算使用
func (r *BOMRepository) ActiveChildren(tx *gorm.DB, bomID string) ([]entity.BOMComponent, []entity.BOMOperation, error) {
	var components []entity.BOMComponent
	if err := tx.Where("bom_id = ? AND deleted_at IS NULL", bomID).Find(&components).Error; err != nil {
		return nil, nil, err
	}
	var operations []entity.BOMOperation
	if err := tx.Where("bom_id = ? AND deleted_at IS NULL", bomID).Find(&operations).Error; err != nil {
		return nil, nil, err
	}
	return components, operations, nil
}

// FindComponentByID 根据ID查找物料行
func (r *BOMRepository) FindComponentByID(ctx context.Context, id string) (*entity.BOMComponent, error) {
	var component entity.BOMComponent
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&component, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &component, nil
}

// FindOperationByID 根据ID查找工序行
func (r *BOMRepository) FindOperationByID(ctx context.Context, id string) (*entity.BOMOperation, error) {
	var operation entity.BOMOperation
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&operation, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &operation, nil
}
