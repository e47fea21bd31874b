package service

import (
	"github.com/redis/go-redis/v9"

	"github.com/DeathRay00/trackmint/internal/config"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
)

// Services 服务集合
type Services struct {
	Auth       *AuthService
	User       *UserService
	Product    *ProductService
	WorkCenter *WorkCenterService
	BOM        *BOMService
	Order      *OrderService
	Stock      *StockService
	Report     *ReportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		User:       NewUserService(repos.User),
		Product:    NewProductService(repos.Product),
		WorkCenter: NewWorkCenterService(repos.WorkCenter),
		BOM:        NewBOMService(repos.BOM, repos.Product, repos.WorkCenter),
		Order:      NewOrderService(repos.Order, repos.Product, repos.BOM),
		Stock:      NewStockService(repos.Stock, repos.Product, repos.Location),
		Report:     NewReportService(repos.Stock, repos.Product),
	}
}
