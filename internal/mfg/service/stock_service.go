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

// StockService 库存流水与库位
// 每笔移动在单个事务内完成：锁产品行、纯函数推导新状态、写流水、回写产品
type StockService struct {
	stockRepo    *repository.StockRepository
	productRepo  *repository.ProductRepository
	locationRepo *repository.LocationRepository
}

func NewStockService(stockRepo *repository.StockRepository, productRepo *repository.ProductRepository, locationRepo *repository.LocationRepository) *StockService {
	return &StockService{stockRepo: stockRepo, productRepo: productRepo, locationRepo: locationRepo}
}

type CreateMoveRequest struct {
	ProductID     string          `json:"product_id" binding:"required"`
	MoveType      entity.MoveType `json:"move_type" binding:"required"`
	Quantity      int             `json:"quantity" binding:"required"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ReferenceID   string          `json:"reference_id"`
	ReferenceType entity.OrderRef `json:"reference_type"`
	LocationID    string          `json:"location_id" binding:"required"`
	Notes         string          `json:"notes"`
}

// CreateMove 记录一笔库存移动并更新产品的数量与移动加权平均成本
func (s *StockService) CreateMove(ctx context.Context, actorID string, req *CreateMoveRequest) (*entity.StockMove, error) {
	if !req.MoveType.Valid() {
		return nil, engine.NewValidation("Unknown stock move type", "move_type", string(req.MoveType))
	}
	if req.UnitCost.IsNegative() {
		return nil, engine.NewValidation("Unit cost must not be negative", "unit_cost", req.UnitCost)
	}
	if req.ReferenceType != "" && !req.ReferenceType.Valid() {
		return nil, engine.NewValidation("Reference type must be MO or WO", "reference_type", string(req.ReferenceType))
	}
	if req.ReferenceID != "" && req.ReferenceType == "" {
		return nil, engine.NewValidation("Reference type is required when a reference ID is given", "reference_type", "")
	}

	location, err := s.locationRepo.FindByID(ctx, req.LocationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Location", req.LocationID)
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	if !location.IsActive {
		return nil, engine.NewBusinessLogic("Cannot record stock moves against an inactive location")
	}

	now := time.Now()
	move := &entity.StockMove{
		Base:          entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		ProductID:     req.ProductID,
		MoveType:      req.MoveType,
		Quantity:      req.Quantity,
		UnitCost:      req.UnitCost.Round(2),
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		LocationID:    req.LocationID,
		Notes:         req.Notes,
	}

	err = s.stockRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockForUpdate(tx, req.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return engine.NewNotFound("Product", req.ProductID)
			}
			return fmt.Errorf("lock product: %w", err)
		}

		state, err := engine.ApplyMove(product, req.MoveType, req.Quantity, move.UnitCost)
		if err != nil {
			return err
		}

		if err := s.stockRepo.CreateMove(tx, move); err != nil {
			return fmt.Errorf("create stock move: %w", err)
		}

		product.StockQuantity = state.Quantity
		product.UnitCost = state.UnitCost
		product.UpdatedAt = now
		product.UpdatedByID = actorID
		if err := tx.Save(product).Error; err != nil {
			return fmt.Errorf("update product stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return move, nil
}

// GetMove 库存流水详情
func (s *StockService) GetMove(ctx context.Context, id string) (*entity.StockMove, error) {
	move, err := s.stockRepo.FindMoveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Stock move", id)
		}
		return nil, fmt.Errorf("find stock move: %w", err)
	}
	return move, nil
}

// ListMoves 库存流水列表
func (s *StockService) ListMoves(ctx context.Context, params repository.MoveListParams) ([]entity.StockMove, int64, error) {
	return s.stockRepo.ListMoves(ctx, params)
}

// UpdateMoveNotes 流水落库后仅备注可改
func (s *StockService) UpdateMoveNotes(ctx context.Context, id, actorID, notes string) (*entity.StockMove, error) {
	move, err := s.GetMove(ctx, id)
	if err != nil {
		return nil, err
	}
	move.Notes = notes
	move.UpdatedByID = actorID
	if err := s.stockRepo.UpdateMove(ctx, move); err != nil {
		return nil, fmt.Errorf("update stock move: %w", err)
	}
	return move, nil
}

// DeleteMove 软删除流水记录本身，不回放产品数量与成本
func (s *StockService) DeleteMove(ctx context.Context, id, actorID string) error {
	move, err := s.GetMove(ctx, id)
	if err != nil {
		return err
	}
	move.Retire(time.Now(), actorID)
	if err := s.stockRepo.UpdateMove(ctx, move); err != nil {
		return fmt.Errorf("delete stock move: %w", err)
	}
	return nil
}

type CreateLocationRequest struct {
	Name             string `json:"name" binding:"required"`
	Code             string `json:"code" binding:"required"`
	Description      string `json:"description"`
	ParentLocationID string `json:"parent_location_id"`
}

// CreateLocation 创建库位，编码全局唯一
func (s *StockService) CreateLocation(ctx context.Context, actorID string, req *CreateLocationRequest) (*entity.Location, error) {
	exists, err := s.locationRepo.CodeExists(ctx, req.Code, "")
	if err != nil {
		return nil, fmt.Errorf("check location code: %w", err)
	}
	if exists {
		return nil, engine.NewConflict("Location code already exists", "code", req.Code)
	}
	if req.ParentLocationID != "" {
		if _, err := s.locationRepo.FindByID(ctx, req.ParentLocationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, engine.NewNotFound("Location", req.ParentLocationID)
			}
			return nil, fmt.Errorf("find parent location: %w", err)
		}
	}

	now := time.Now()
	location := &entity.Location{
		Base:             entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		Name:             req.Name,
		Code:             req.Code,
		Description:      req.Description,
		IsActive:         true,
		ParentLocationID: req.ParentLocationID,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return location, nil
}

// GetLocation 库位详情
func (s *StockService) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Location", id)
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	return location, nil
}

// ListLocations 库位列表
func (s *StockService) ListLocations(ctx context.Context, isActive *bool, page, pageSize int) ([]entity.Location, int64, error) {
	return s.locationRepo.List(ctx, isActive, page, pageSize)
}

type UpdateLocationRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateLocation 更新库位
func (s *StockService) UpdateLocation(ctx context.Context, id, actorID string, req *UpdateLocationRequest) (*entity.Location, error) {
	location, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != location.Code {
		exists, err := s.locationRepo.CodeExists(ctx, *req.Code, id)
		if err != nil {
			return nil, fmt.Errorf("check location code: %w", err)
		}
		if exists {
			return nil, engine.NewConflict("Location code already exists", "code", *req.Code)
		}
		location.Code = *req.Code
	}
	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Description != nil {
		location.Description = *req.Description
	}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}
	location.UpdatedByID = actorID

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return location, nil
}

// DeleteLocation 软删除库位，被流水引用的库位不可删
func (s *StockService) DeleteLocation(ctx context.Context, id, actorID string) error {
	location, err := s.GetLocation(ctx, id)
	if err != nil {
		return err
	}
	referenced, err := s.stockRepo.MovesExistForLocation(ctx, id)
	if err != nil {
		return fmt.Errorf("check location references: %w", err)
	}
	if referenced {
		return engine.NewConflict("Location is referenced by stock moves", "location_id", id)
	}
	location.Retire(time.Now(), actorID)
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}
