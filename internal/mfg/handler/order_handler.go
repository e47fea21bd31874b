package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
	"github.com/DeathRay00/trackmint/internal/mfg/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateMO POST /manufacturing-orders
func (h *OrderHandler) CreateMO(c *gin.Context) {
	var req service.CreateMORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	mo, err := h.svc.CreateMO(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, mo)
}

// GetMO GET /manufacturing-orders/:id
func (h *OrderHandler) GetMO(c *gin.Context) {
	mo, err := h.svc.GetMO(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, mo)
}

// ListMO GET /manufacturing-orders
func (h *OrderHandler) ListMO(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.MOListParams{
		ProductID: c.Query("product_id"),
		Status:    entity.OrderStatus(c.Query("status")),
		Priority:  entity.Priority(c.Query("priority")),
		Page:      page,
		PageSize:  pageSize,
	}

	orders, total, err := h.svc.ListMO(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: orders, Pagination: NewPagination(page, pageSize, total)})
}

// UpdateMO PUT /manufacturing-orders/:id
func (h *OrderHandler) UpdateMO(c *gin.Context) {
	var req service.UpdateMORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	mo, err := h.svc.UpdateMO(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, mo)
}

// CancelMO POST /manufacturing-orders/:id/cancel
func (h *OrderHandler) CancelMO(c *gin.Context) {
	mo, err := h.svc.CancelMO(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, mo)
}

// DeleteMO DELETE /manufacturing-orders/:id
func (h *OrderHandler) DeleteMO(c *gin.Context) {
	if err := h.svc.DeleteMO(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "Manufacturing order deleted"})
}

// Dashboard GET /manufacturing-orders/dashboard
func (h *OrderHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, stats)
}

// CreateWO POST /work-orders
func (h *OrderHandler) CreateWO(c *gin.Context) {
	var req service.CreateWORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	wo, err := h.svc.CreateWO(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, wo)
}

// GetWO GET /work-orders/:id
func (h *OrderHandler) GetWO(c *gin.Context) {
	wo, err := h.svc.GetWO(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}

// ListWO GET /work-orders
func (h *OrderHandler) ListWO(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.WOListParams{
		ManufacturingOrderID: c.Query("manufacturing_order_id"),
		Status:               entity.WorkOrderStatus(c.Query("status")),
		AssignedOperatorID:   c.Query("assigned_operator_id"),
		Page:                 page,
		PageSize:             pageSize,
	}

	orders, total, err := h.svc.ListWO(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: orders, Pagination: NewPagination(page, pageSize, total)})
}

// MyTasks GET /work-orders/my-tasks
func (h *OrderHandler) MyTasks(c *gin.Context) {
	page, pageSize := GetPagination(c)
	tasks, total, err := h.svc.MyTasks(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: tasks, Pagination: NewPagination(page, pageSize, total)})
}

// UpdateWO PUT /work-orders/:id
func (h *OrderHandler) UpdateWO(c *gin.Context) {
	var req service.UpdateWORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	wo, err := h.svc.UpdateWO(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}

// UpdateWOStatus PATCH /work-orders/:id/status
func (h *OrderHandler) UpdateWOStatus(c *gin.Context) {
	var req service.UpdateWOStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	wo, err := h.svc.UpdateWOStatus(c.Request.Context(), c.Param("id"), GetActor(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}
