package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Repositories 仓库集合
type Repositories struct {
	User       *UserRepository
	Product    *ProductRepository
	WorkCenter *WorkCenterRepository
	BOM        *BOMRepository
	Order      *OrderRepository
	Stock      *StockRepository
	Location   *LocationRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Product:    NewProductRepository(db),
		WorkCenter: NewWorkCenterRepository(db),
		BOM:        NewBOMRepository(db),
		Order:      NewOrderRepository(db),
		Stock:      NewStockRepository(db),
		Location:   NewLocationRepository(db),
	}
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// translateDuplicate 依赖 gorm 的 TranslateError 把唯一索引冲突映射为哨兵错误
func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
