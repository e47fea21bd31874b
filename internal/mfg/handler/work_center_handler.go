package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DeathRay00/trackmint/internal/mfg/service"
)

type WorkCenterHandler struct {
	svc *service.WorkCenterService
}

func NewWorkCenterHandler(svc *service.WorkCenterService) *WorkCenterHandler {
	return &WorkCenterHandler{svc: svc}
}

// Create POST /work-centers
func (h *WorkCenterHandler) Create(c *gin.Context) {
	var req service.CreateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	wc, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, wc)
}

// Get GET /work-centers/:id
func (h *WorkCenterHandler) Get(c *gin.Context) {
	wc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wc)
}

// List GET /work-centers
func (h *WorkCenterHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	centers, total, err := h.svc.List(c.Request.Context(), boolQuery(c, "is_active"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: centers, Pagination: NewPagination(page, pageSize, total)})
}

// Update PUT /work-centers/:id
func (h *WorkCenterHandler) Update(c *gin.Context) {
	var req service.UpdateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	wc, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wc)
}

// Delete DELETE /work-centers/:id
func (h *WorkCenterHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "Work center deleted"})
}
