package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) DB() *gorm.DB {
	return r.db
}

// Create 创建产品
func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID 根据ID查找产品
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// SKUExists 指定SKU是否已被其他产品占用
func (r *ProductRepository) SKUExists(ctx context.Context, sku, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("sku = ? AND deleted_at IS NULL", sku)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// ProductListParams 产品列表过滤条件
type ProductListParams struct {
	Keyword  string
	Category string
	IsActive *bool
	Page     int
	PageSize int
}

// List 产品列表
func (r *ProductRepository) List(ctx context.Context, params ProductListParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("deleted_at IS NULL")
	if params.Keyword != "" {
		like := "%" + params.Keyword + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&products).Error
	return products, total, err
}

// Update 更新产品
func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// LockForUpdate 在事务内对产品行加排他锁
// 库存移动的读-改-写必须按产品串行化，调用方必须传入事务句柄
func (r *ProductRepository) LockForUpdate(tx *gorm.DB, id string) (*entity.Product, error) {
	var product entity.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deleted_at IS NULL").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// BelowReorderLevel 低于补货点的产品
func (r *ProductRepository) BelowReorderLevel(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL AND reorder_level > 0 AND stock_quantity <= reorder_level").
		Order("name").
		Find(&products).Error
	return products, err
}
