package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
)

// WorkCenterService 工作中心主数据
type WorkCenterService struct {
	wcRepo *repository.WorkCenterRepository
}

func NewWorkCenterService(wcRepo *repository.WorkCenterRepository) *WorkCenterService {
	return &WorkCenterService{wcRepo: wcRepo}
}

type CreateWorkCenterRequest struct {
	Name        string          `json:"name" binding:"required"`
	Code        string          `json:"code" binding:"required"`
	Capacity    decimal.Decimal `json:"capacity" binding:"required"`
	CostPerHour decimal.Decimal `json:"cost_per_hour"`
	Efficiency  decimal.Decimal `json:"efficiency"`
	Description string          `json:"description"`
}

// Create 创建工作中心，编码唯一
func (s *WorkCenterService) Create(ctx context.Context, actorID string, req *CreateWorkCenterRequest) (*entity.WorkCenter, error) {
	if req.CostPerHour.IsNegative() {
		return nil, engine.NewValidation("Cost per hour must not be negative", "cost_per_hour", req.CostPerHour)
	}

	exists, err := s.wcRepo.CodeExists(ctx, req.Code, "")
	if err != nil {
		return nil, fmt.Errorf("check code: %w", err)
	}
	if exists {
		return nil, engine.NewConflict("Work center with this code already exists", "code", req.Code)
	}

	efficiency := req.Efficiency
	if efficiency.IsZero() {
		efficiency = decimal.NewFromInt(100)
	}

	now := time.Now()
	wc := &entity.WorkCenter{
		Base:        entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		Name:        req.Name,
		Code:        req.Code,
		Capacity:    req.Capacity,
		CostPerHour: req.CostPerHour.Round(2),
		Efficiency:  efficiency,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.wcRepo.Create(ctx, wc); err != nil {
		return nil, fmt.Errorf("create work center: %w", err)
	}
	return wc, nil
}

// Get 工作中心详情
func (s *WorkCenterService) Get(ctx context.Context, id string) (*entity.WorkCenter, error) {
	wc, err := s.wcRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Work center", id)
		}
		return nil, fmt.Errorf("find work center: %w", err)
	}
	return wc, nil
}

// List 工作中心列表
func (s *WorkCenterService) List(ctx context.Context, isActive *bool, page, pageSize int) ([]entity.WorkCenter, int64, error) {
	return s.wcRepo.List(ctx, isActive, page, pageSize)
}

type UpdateWorkCenterRequest struct {
	Name        *string          `json:"name"`
	Code        *string          `json:"code"`
	Capacity    *decimal.Decimal `json:"capacity"`
	CostPerHour *decimal.Decimal `json:"cost_per_hour"`
	Efficiency  *decimal.Decimal `json:"efficiency"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

// Update 更新工作中心
func (s *WorkCenterService) Update(ctx context.Context, id, actorID string, req *UpdateWorkCenterRequest) (*entity.WorkCenter, error) {
	wc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != wc.Code {
		exists, err := s.wcRepo.CodeExists(ctx, *req.Code, id)
		if err != nil {
			return nil, fmt.Errorf("check code: %w", err)
		}
		if exists {
			return nil, engine.NewConflict("Work center with this code already exists", "code", *req.Code)
		}
		wc.Code = *req.Code
	}
	if req.Name != nil {
		wc.Name = *req.Name
	}
	if req.Capacity != nil {
		wc.Capacity = *req.Capacity
	}
	if req.CostPerHour != nil {
		if req.CostPerHour.IsNegative() {
			return nil, engine.NewValidation("Cost per hour must not be negative", "cost_per_hour", *req.CostPerHour)
		}
		wc.CostPerHour = req.CostPerHour.Round(2)
	}
	if req.Efficiency != nil {
		wc.Efficiency = *req.Efficiency
	}
	if req.Description != nil {
		wc.Description = *req.Description
	}
	if req.IsActive != nil {
		wc.IsActive = *req.IsActive
	}
	wc.UpdatedByID = actorID

	if err := s.wcRepo.Update(ctx, wc); err != nil {
		return nil, fmt.Errorf("update work center: %w", err)
	}
	return wc, nil
}

// Delete 软删除工作中心；仍被BOM工序引用时拒绝
func (s *WorkCenterService) Delete(ctx context.Context, id, actorID string) error {
	wc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	used, err := s.wcRepo.HasActiveOperations(ctx, id)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}
	if used {
		return engine.NewConflict("Work center is referenced by BOM operations", "id", id)
	}

	wc.Retire(time.Now(), actorID)
	if err := s.wcRepo.Update(ctx, wc); err != nil {
		return fmt.Errorf("delete work center: %w", err)
	}
	return nil
}
