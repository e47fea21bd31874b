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

// ProductService 产品主数据
type ProductService struct {
	productRepo *repository.ProductRepository
}

func NewProductService(productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	SKU           string          `json:"sku" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	UnitOfMeasure string          `json:"unit_of_measure" binding:"required"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	StockQuantity int             `json:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level"`
	Description   string          `json:"description"`
}

// Create 创建产品，SKU 全局唯一
func (s *ProductService) Create(ctx context.Context, actorID string, req *CreateProductRequest) (*entity.Product, error) {
	if req.UnitCost.IsNegative() {
		return nil, engine.NewValidation("Unit cost must not be negative", "unit_cost", req.UnitCost)
	}
	if req.StockQuantity < 0 {
		return nil, engine.NewValidation("Stock quantity must not be negative", "stock_quantity", req.StockQuantity)
	}

	exists, err := s.productRepo.SKUExists(ctx, req.SKU, "")
	if err != nil {
		return nil, fmt.Errorf("check sku: %w", err)
	}
	if exists {
		return nil, engine.NewConflict("Product with this SKU already exists", "sku", req.SKU)
	}

	now := time.Now()
	product := &entity.Product{
		Base:          entity.Base{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, CreatedByID: actorID},
		Name:          req.Name,
		SKU:           req.SKU,
		Category:      req.Category,
		UnitOfMeasure: req.UnitOfMeasure,
		UnitCost:      req.UnitCost.Round(2),
		StockQuantity: req.StockQuantity,
		ReorderLevel:  req.ReorderLevel,
		Description:   req.Description,
		IsActive:      true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// Get 产品详情
func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Product", id)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

// List 产品列表
func (s *ProductService) List(ctx context.Context, params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

type UpdateProductRequest struct {
	Name          *string `json:"name"`
	SKU           *string `json:"sku"`
	Category      *string `json:"category"`
	UnitOfMeasure *string `json:"unit_of_measure"`
	ReorderLevel  *int    `json:"reorder_level"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

// Update 更新产品主数据
// 库存数量与平均成本不在此处修改，只能经由库存引擎变更
func (s *ProductService) Update(ctx context.Context, id, actorID string, req *UpdateProductRequest) (*entity.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil && *req.SKU != product.SKU {
		exists, err := s.productRepo.SKUExists(ctx, *req.SKU, id)
		if err != nil {
			return nil, fmt.Errorf("check sku: %w", err)
		}
		if exists {
			return nil, engine.NewConflict("Product with this SKU already exists", "sku", *req.SKU)
		}
		product.SKU = *req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.UnitOfMeasure != nil {
		product.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedByID = actorID

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// Delete 软删除产品，不做物理删除
func (s *ProductService) Delete(ctx context.Context, id, actorID string) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	product.Retire(time.Now(), actorID)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
