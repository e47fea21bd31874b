package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
)

// BOMService BOM 及其物料行/工序行
// 任何子项变更都会在同一事务内全量重算 TotalCost，保证派生成本不落后于输入
type BOMService struct {
	bomRepo     *repository.BOMRepository
	productRepo *repository.ProductRepository
	wcRepo      *repository.WorkCenterRepository
}

func NewBOMService(bomRepo *repository.BOMRepository, productRepo *repository.ProductRepository, wcRepo *repository.WorkCenterRepository) *BOMService {
	return &BOMService{bomRepo: bomRepo, productRepo: productRepo, wcRepo: wcRepo}
}

type CreateBOMRequest struct {
	Name      string `json:"name" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Version   string `json:"version" binding:"required"`
}

// Create 创建BOM，版本在同一产品下唯一
func (s *BOMService) Create(ctx context.Context, actorID string, req *CreateBOMRequest) (*entity.BOM, error) {
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Product", req.ProductID)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	exists, err := s.bomRepo.VersionExists(ctx, req.ProductID, req.Version, "")
	if err != nil {
		return nil, fmt.Errorf("check version: %w", err)
	}
	if exists {
		return nil, engine.NewConflict("BOM version already exists for this product", "version", req.Version)
	}

	now := time.Now()
	bom := &entity.BOM{
		Base:      entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		Name:      req.Name,
		ProductID: req.ProductID,
		Version:   req.Version,
		IsActive:  true,
		TotalCost: decimal.Zero,
	}
	if err := s.bomRepo.Create(ctx, bom); err != nil {
		return nil, fmt.Errorf("create bom: %w", err)
	}
	return bom, nil
}

// Get BOM详情，带未删除的子项
func (s *BOMService) Get(ctx context.Context, id string) (*entity.BOM, error) {
	bom, err := s.bomRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("BOM", id)
		}
		return nil, fmt.Errorf("find bom: %w", err)
	}
	return bom, nil
}

// List BOM列表
func (s *BOMService) List(ctx context.Context, productID string, isActive *bool, page, pageSize int) ([]entity.BOM, int64, error) {
	return s.bomRepo.List(ctx, productID, isActive, page, pageSize)
}

type UpdateBOMRequest struct {
	Name     *string `json:"name"`
	Version  *string `json:"version"`
	IsActive *bool   `json:"is_active"`
}

// Update 更新BOM头
func (s *BOMService) Update(ctx context.Context, id, actorID string, req *UpdateBOMRequest) (*entity.BOM, error) {
	bom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Version != nil && *req.Version != bom.Version {
		exists, err := s.bomRepo.VersionExists(ctx, bom.ProductID, *req.Version, id)
		if err != nil {
			return nil, fmt.Errorf("check version: %w", err)
		}
		if exists {
			return nil, engine.NewConflict("BOM version already exists for this product", "version", *req.Version)
		}
		bom.Version = *req.Version
	}
	if req.Name != nil {
		bom.Name = *req.Name
	}
	if req.IsActive != nil {
		bom.IsActive = *req.IsActive
	}
	bom.UpdatedByID = actorID

	if err := s.bomRepo.Update(ctx, bom); err != nil {
		return nil, fmt.Errorf("update bom: %w", err)
	}
	return bom, nil
}

// Delete 软删除BOM
func (s *BOMService) Delete(ctx context.Context, id, actorID string) error {
	bom, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	bom.Retire(time.Now(), actorID)
	if err := s.bomRepo.Update(ctx, bom); err != nil {
		return fmt.Errorf("delete bom: %w", err)
	}
	return nil
}

// Cost 当前成本拆解（按未删除子项即时计算，不落库）
func (s *BOMService) Cost(ctx context.Context, id string) (*engine.CostBreakdown, error) {
	bom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	breakdown := engine.RollUp(bom.Components, bom.Operations)
	return &breakdown, nil
}

// recalcTotalCost 在事务内全量重算并保存 BOM.TotalCost
// 增量维护会累积漂移，这里始终重读子项全量重算
func (s *BOMService) recalcTotalCost(tx *gorm.DB, bomID, actorID string) error {
	components, operations, err := s.bomRepo.ActiveChildren(tx, bomID)
	if err != nil {
		return fmt.Errorf("load bom children: %w", err)
	}
	breakdown := engine.RollUp(components, operations)

	return tx.Model(&entity.BOM{}).
		Where("id = ?", bomID).
		Updates(map[string]any{
			"total_cost":    breakdown.TotalCost,
			"updated_by_id": actorID,
			"updated_at":    time.Now(),
		}).Error
}

type ComponentRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// AddComponent 新增物料行并重算成本
func (s *BOMService) AddComponent(ctx context.Context, bomID, actorID string, req *ComponentRequest) (*entity.BOMComponent, error) {
	if !req.Quantity.IsPositive() {
		return nil, engine.NewValidation("Component quantity must be a positive number", "quantity", req.Quantity)
	}
	if req.UnitCost.IsNegative() {
		return nil, engine.NewValidation("Component unit cost must not be negative", "unit_cost", req.UnitCost)
	}
	if _, err := s.Get(ctx, bomID); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Product", req.ProductID)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	now := time.Now()
	component := &entity.BOMComponent{
		Base:      entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		BOMID:     bomID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity.Round(3),
		UnitCost:  req.UnitCost.Round(2),
	}

	err := s.bomRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(component).Error; err != nil {
			return fmt.Errorf("create component: %w", err)
		}
		return s.recalcTotalCost(tx, bomID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return component, nil
}

type UpdateComponentRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

// UpdateComponent 更新物料行并重算成本
func (s *BOMService) UpdateComponent(ctx context.Context, bomID, componentID, actorID string, req *UpdateComponentRequest) (*entity.BOMComponent, error) {
	component, err := s.bomRepo.FindComponentByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("BOM component", componentID)
		}
		return nil, fmt.Errorf("find component: %w", err)
	}
	if component.BOMID != bomID {
		return nil, engine.NewNotFound("BOM component", componentID)
	}

	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, engine.NewValidation("Component quantity must be a positive number", "quantity", *req.Quantity)
		}
		component.Quantity = req.Quantity.Round(3)
	}
	if req.UnitCost != nil {
		if req.UnitCost.IsNegative() {
			return nil, engine.NewValidation("Component unit cost must not be negative", "unit_cost", *req.UnitCost)
		}
		component.UnitCost = req.UnitCost.Round(2)
	}
	component.UpdatedByID = actorID

	err = s.bomRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(component).Error; err != nil {
			return fmt.Errorf("update component: %w", err)
		}
		return s.recalcTotalCost(tx, bomID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return component, nil
}

// DeleteComponent 软删除物料行并重算成本
func (s *BOMService) DeleteComponent(ctx context.Context, bomID, componentID, actorID string) error {
	component, err := s.bomRepo.FindComponentByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return engine.NewNotFound("BOM component", componentID)
		}
		return fmt.Errorf("find component: %w", err)
	}
	if component.BOMID != bomID {
		return engine.NewNotFound("BOM component", componentID)
	}

	component.Retire(time.Now(), actorID)
	return s.bomRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(component).Error; err != nil {
			return fmt.Errorf("delete component: %w", err)
		}
		return s.recalcTotalCost(tx, bomID, actorID)
	})
}

type OperationRequest struct {
	WorkCenterID string          `json:"work_center_id" binding:"required"`
	Sequence     int             `json:"sequence" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Duration     int             `json:"duration" binding:"required"`
	SetupTime    int             `json:"setup_time"`
	CostPerHour  decimal.Decimal `json:"cost_per_hour"`
}

// AddOperation 新增工序行并重算成本
func (s *BOMService) AddOperation(ctx context.Context, bomID, actorID string, req *OperationRequest) (*entity.BOMOperation, error) {
	if req.Sequence < 1 {
		return nil, engine.NewValidation("Operation sequence must be at least 1", "sequence", req.Sequence)
	}
	if req.Duration <= 0 {
		return nil, engine.NewValidation("Operation duration must be a positive number", "duration", req.Duration)
	}
	if req.SetupTime < 0 {
		return nil, engine.NewValidation("Setup time must not be negative", "setup_time", req.SetupTime)
	}
	if req.CostPerHour.IsNegative() {
		return nil, engine.NewValidation("Cost per hour must not be negative", "cost_per_hour", req.CostPerHour)
	}
	if _, err := s.Get(ctx, bomID); err != nil {
		return nil, err
	}
	if _, err := s.wcRepo.FindByID(ctx, req.WorkCenterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Work center", req.WorkCenterID)
		}
		return nil, fmt.Errorf("find work center: %w", err)
	}

	now := time.Now()
	operation := &entity.BOMOperation{
		Base:         entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		BOMID:        bomID,
		WorkCenterID: req.WorkCenterID,
		Sequence:     req.Sequence,
		Description:  req.Description,
		Duration:     req.Duration,
		SetupTime:    req.SetupTime,
		CostPerHour:  req.CostPerHour.Round(2),
	}

	err := s.bomRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(operation).Error; err != nil {
			return fmt.Errorf("create operation: %w", err)
		}
		return s.recalcTotalCost(tx, bomID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return operation, nil
}

type UpdateOperationRequest struct {
	WorkCenterID *string          `json:"work_center_id"`
	Sequence     *int             `json:"sequence"`
	Description  *string          `json:"description"`
	Duration     *int             `json:"duration"`
	SetupTime    *int             `json:"setup_time"`
	CostPerHour  *decimal.Decimal `json:"cost_per_hour"`
}

// UpdateOperation 更新工序行并重算成本
func (s *BOMService) UpdateOperation(ctx context.Context, bomID, operationID, actorID string, req *UpdateOperationRequest) (*entity.BOMOperation, error) {
	operation, err := s.bomRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("BOM operation", operationID)
		}
		return nil, fmt.Errorf("find operation: %w", err)
	}
	if operation.BOMID != bomID {
		return nil, engine.NewNotFound("BOM operation", operationID)
	}

	if req.Sequence != nil {
		if *req.Sequence < 1 {
			return nil, engine.NewValidation("Operation sequence must be at least 1", "sequence", *req.Sequence)
		}
		operation.Sequence = *req.Sequence
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, engine.NewValidation("Operation duration must be a positive number", "duration", *req.Duration)
		}
		operation.Duration = *req.Duration
	}
	if req.SetupTime != nil {
		if *req.SetupTime < 0 {
			return nil, engine.NewValidation("Setup time must not be negative", "setup_time", *req.SetupTime)
		}
		operation.SetupTime = *req.SetupTime
	}
	if req.CostPerHour != nil {
		if req.CostPerHour.IsNegative() {
			return nil, engine.NewValidation("Cost per hour must not be negative", "cost_per_hour", *req.CostPerHour)
		}
		operation.CostPerHour = req.CostPerHour.Round(2)
	}
	if req.WorkCenterID != nil {
		if _, err := s.wcRepo.FindByID(ctx, *req.WorkCenterID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, engine.NewNotFound("Work center", *req.WorkCenterID)
			}
			return nil, fmt.Errorf("find work center: %w", err)
		}
		operation.WorkCenterID = *req.WorkCenterID
	}
	if req.Description != nil {
		operation.Description = *req.Description
	}
	operation.UpdatedByID = actorID

	err = s.bomRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(operation).Error; err != nil {
			return fmt.Errorf("update operation: %w", err)
		}
		return s.recalcTotalCost(tx, bomID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return operation, nil
}

// DeleteOperation 软删除工序行并重算成本
func (s *BOMService) DeleteOperation(ctx context.Context, bomID, operationID, actorID string) error {
	operation, err := s.bomRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return engine.NewNotFound("BOM operation", operationID)
		}
		return fmt.Errorf("find operation: %w", err)
	}
	if operation.BOMID != bomID {
		return engine.NewNotFound("BOM operation", operationID)
	}

	operation.Retire(time.Now(), actorID)
	return s.bomRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(operation).Error; err != nil {
			return fmt.Errorf("delete operation: %w", err)
		}
		return s.recalcTotalCost(tx, bomID, actorID)
	})
}
