package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/middleware"
)

// RegisterRoutes 注册全部路由
// 每条受保护路由一个权限标签，中间件对令牌里的角色静态求值
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/me", middleware.JWTAuth(jwtSecret), h.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtSecret))

	users := protected.Group("/users")
	{
		users.GET("", middleware.RequirePermission(engine.PermReadUser), h.User.List)
		users.PUT("/me", h.User.UpdateMe)
		users.GET("/:id", middleware.RequirePermission(engine.PermReadUser), h.User.Get)
		users.PUT("/:id", middleware.RequirePermission(engine.PermUpdateUser), h.User.Update)
		users.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteUser), h.User.Delete)
	}

	products := protected.Group("/products")
	{
		products.POST("", middleware.RequirePermission(engine.PermCreateProduct), h.Product.Create)
		products.GET("", middleware.RequirePermission(engine.PermReadProduct), h.Product.List)
		products.GET("/:id", middleware.RequirePermission(engine.PermReadProduct), h.Product.Get)
		products.PUT("/:id", middleware.RequirePermission(engine.PermUpdateProduct), h.Product.Update)
		products.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteProduct), h.Product.Delete)
	}

	workCenters := protected.Group("/work-centers")
	{
		workCenters.POST("", middleware.RequirePermission(engine.PermCreateWorkCenter), h.WorkCenter.Create)
		workCenters.GET("", middleware.RequirePermission(engine.PermReadWorkCenter), h.WorkCenter.List)
		workCenters.GET("/:id", middleware.RequirePermission(engine.PermReadWorkCenter), h.WorkCenter.Get)
		workCenters.PUT("/:id", middleware.RequirePermission(engine.PermUpdateWorkCenter), h.WorkCenter.Update)
		workCenters.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteWorkCenter), h.WorkCenter.Delete)
	}

	boms := protected.Group("/boms")
	{
		boms.POST("", middleware.RequirePermission(engine.PermCreateBOM), h.BOM.Create)
		boms.GET("", middleware.RequirePermission(engine.PermReadBOM), h.BOM.List)
		boms.GET("/:id", middleware.RequirePermission(engine.PermReadBOM), h.BOM.Get)
		boms.PUT("/:id", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.Update)
		boms.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteBOM), h.BOM.Delete)
		boms.GET("/:id/cost", middleware.RequirePermission(engine.PermReadBOM), h.BOM.Cost)

		boms.POST("/:id/components", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.AddComponent)
		boms.PUT("/:id/components/:componentId", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.UpdateComponent)
		boms.DELETE("/:id/components/:componentId", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.DeleteComponent)

		boms.POST("/:id/operations", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.AddOperation)
		boms.PUT("/:id/operations/:operationId", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.UpdateOperation)
		boms.DELETE("/:id/operations/:operationId", middleware.RequirePermission(engine.PermUpdateBOM), h.BOM.DeleteOperation)
	}

	orders := protected.Group("/manufacturing-orders")
	{
		orders.POST("", middleware.RequirePermission(engine.PermCreateManufacturingOrder), h.Order.CreateMO)
		orders.GET("", middleware.RequirePermission(engine.PermReadManufacturingOrder), h.Order.ListMO)
		orders.GET("/dashboard", middleware.RequirePermission(engine.PermReadManufacturingOrder), h.Order.Dashboard)
		orders.GET("/:id", middleware.RequirePermission(engine.PermReadManufacturingOrder), h.Order.GetMO)
		orders.PUT("/:id", middleware.RequirePermission(engine.PermUpdateManufacturingOrder), h.Order.UpdateMO)
		orders.POST("/:id/cancel", middleware.RequirePermission(engine.PermUpdateManufacturingOrder), h.Order.CancelMO)
		orders.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteManufacturingOrder), h.Order.DeleteMO)
	}

	workOrders := protected.Group("/work-orders")
	{
		workOrders.POST("", middleware.RequirePermission(engine.PermCreateWorkOrder), h.Order.CreateWO)
		workOrders.GET("", middleware.RequirePermission(engine.PermReadWorkOrder), h.Order.ListWO)
		workOrders.GET("/my-tasks", middleware.RequirePermission(engine.PermReadWorkOrder), h.Order.MyTasks)
		workOrders.GET("/:id", middleware.RequirePermission(engine.PermReadWorkOrder), h.Order.GetWO)
		workOrders.PUT("/:id", middleware.RequirePermission(engine.PermUpdateWorkOrder), h.Order.UpdateWO)
		workOrders.PATCH("/:id/status", middleware.RequirePermission(engine.PermUpdateWorkOrder), h.Order.UpdateWOStatus)
	}

	stockMoves := protected.Group("/stock-moves")
	{
		stockMoves.POST("", middleware.RequirePermission(engine.PermCreateStockMove), h.Stock.CreateMove)
		stockMoves.GET("", middleware.RequirePermission(engine.PermReadStockMove), h.Stock.ListMoves)
		stockMoves.GET("/:id", middleware.RequirePermission(engine.PermReadStockMove), h.Stock.GetMove)
		stockMoves.PATCH("/:id/notes", middleware.RequirePermission(engine.PermUpdateStockMove), h.Stock.UpdateMoveNotes)
		stockMoves.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteStockMove), h.Stock.DeleteMove)
	}

	locations := protected.Group("/locations")
	{
		locations.POST("", middleware.RequirePermission(engine.PermCreateStockMove), h.Stock.CreateLocation)
		locations.GET("", middleware.RequirePermission(engine.PermReadStockMove), h.Stock.ListLocations)
		locations.GET("/:id", middleware.RequirePermission(engine.PermReadStockMove), h.Stock.GetLocation)
		locations.PUT("/:id", middleware.RequirePermission(engine.PermUpdateStockMove), h.Stock.UpdateLocation)
		locations.DELETE("/:id", middleware.RequirePermission(engine.PermDeleteStockMove), h.Stock.DeleteLocation)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/inventory", middleware.RequirePermission(engine.PermReadReports), h.Stock.Inventory)
		reports.GET("/inventory/export", middleware.RequirePermission(engine.PermExportReports), h.Stock.ExportInventory)
		reports.GET("/low-stock", middleware.RequirePermission(engine.PermReadReports), h.Stock.LowStock)
		reports.GET("/movement-summary", middleware.RequirePermission(engine.PermReadReports), h.Stock.MovementSummary)
	}
}
