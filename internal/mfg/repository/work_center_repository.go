package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

type WorkCenterRepository struct {
	db *gorm.DB
}

func NewWorkCenterRepository(db *gorm.DB) *WorkCenterRepository {
	return &WorkCenterRepository{db: db}
}

// Create 创建工作中心
func (r *WorkCenterRepository) Create(ctx context.Context, wc *entity.WorkCenter) error {
	return r.db.WithContext(ctx).Create(wc).Error
}

// FindByID 根据ID查找工作中心
func (r *WorkCenterRepository) FindByID(ctx context.Context, id string) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&wc, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &wc, nil
}

// CodeExists 编码是否已被其他工作中心占用
func (r *WorkCenterRepository) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.WorkCenter{}).
		Where("code = ? AND deleted_at IS NULL", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// List 工作中心列表
func (r *WorkCenterRepository) List(ctx context.Context, isActive *bool, page, pageSize int) ([]entity.WorkCenter, int64, error) {
	var centers []entity.WorkCenter
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkCenter{}).Where("deleted_at IS NULL")
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("code").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&centers).Error
	return centers, total, err
}

// Update 更新工作中心
func (r *WorkCenterRepository) Update(ctx context.Context, wc *entity.WorkCenter) error {
	return r.db.WithContext(ctx).Save(wc).Error
}

// HasActiveOperations 是否仍被未删除的BOM工序引用
func (r *WorkCenterRepository) HasActiveOperations(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.BOMOperation{}).
		Where("work_center_id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}
