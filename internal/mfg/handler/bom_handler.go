package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DeathRay00/trackmint/internal/mfg/service"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// Create POST /boms
func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	bom, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, bom)
}

// Get GET /boms/:id
func (h *BOMHandler) Get(c *gin.Context) {
	bom, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, bom)
}

// List GET /boms
func (h *BOMHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	boms, total, err := h.svc.List(c.Request.Context(), c.Query("product_id"), boolQuery(c, "is_active"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: boms, Pagination: NewPagination(page, pageSize, total)})
}

// Update PUT /boms/:id
func (h *BOMHandler) Update(c *gin.Context) {
	var req service.UpdateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	bom, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, bom)
}

// Delete DELETE /boms/:id
func (h *BOMHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "BOM deleted"})
}

// Cost GET /boms/:id/cost
func (h *BOMHandler) Cost(c *gin.Context) {
	breakdown, err := h.svc.Cost(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, breakdown)
}

// AddComponent POST /boms/:id/components
func (h *BOMHandler) AddComponent(c *gin.Context) {
	var req service.ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	component, err := h.svc.AddComponent(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, component)
}

// UpdateComponent PUT /boms/:id/components/:componentId
func (h *BOMHandler) UpdateComponent(c *gin.Context) {
	var req service.UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	component, err := h.svc.UpdateComponent(c.Request.Context(), c.Param("id"), c.Param("componentId"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, component)
}

// DeleteComponent DELETE /boms/:id/components/:componentId
func (h *BOMHandler) DeleteComponent(c *gin.Context) {
	if err := h.svc.DeleteComponent(c.Request.Context(), c.Param("id"), c.Param("componentId"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "Component removed"})
}

// AddOperation POST /boms/:id/operations
func (h *BOMHandler) AddOperation(c *gin.Context) {
	var req service.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	operation, err := h.svc.AddOperation(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, operation)
}

// UpdateOperation PUT /boms/:id/operations/:operationId
func (h *BOMHandler) UpdateOperation(c *gin.Context) {
	var req service.UpdateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	operation, err := h.svc.UpdateOperation(c.Request.Context(), c.Param("id"), c.Param("operationId"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, operation)
}

// DeleteOperation DELETE /boms/:id/operations/:operationId
func (h *BOMHandler) DeleteOperation(c *gin.Context) {
	if err := h.svc.DeleteOperation(c.Request.Context(), c.Param("id"), c.Param("operationId"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "Operation removed"})
}
