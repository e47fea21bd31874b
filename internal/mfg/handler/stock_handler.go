package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
	"github.com/DeathRay00/trackmint/internal/mfg/service"
)

type StockHandler struct {
	svc    *service.StockService
	report *service.ReportService
}

func NewStockHandler(svc *service.StockService, report *service.ReportService) *StockHandler {
	return &StockHandler{svc: svc, report: report}
}

// CreateMove POST /stock-moves
func (h *StockHandler) CreateMove(c *gin.Context) {
	var req service.CreateMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	move, err := h.svc.CreateMove(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, move)
}

// GetMove GET /stock-moves/:id
func (h *StockHandler) GetMove(c *gin.Context) {
	move, err := h.svc.GetMove(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, move)
}

// ListMoves GET /stock-moves
func (h *StockHandler) ListMoves(c *gin.Context) {
	page, pageSize := GetPagination(c)
	start, err := dateQuery(c, "start_date")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	end, err := dateQuery(c, "end_date")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	params := repository.MoveListParams{
		ProductID:  c.Query("product_id"),
		MoveType:   entity.MoveType(c.Query("move_type")),
		LocationID: c.Query("location_id"),
		StartDate:  start,
		EndDate:    end,
		Page:       page,
		PageSize:   pageSize,
	}

	moves, total, err := h.svc.ListMoves(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: moves, Pagination: NewPagination(page, pageSize, total)})
}

// UpdateMoveNotes PATCH /stock-moves/:id/notes
func (h *StockHandler) UpdateMoveNotes(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	move, err := h.svc.UpdateMoveNotes(c.Request.Context(), c.Param("id"), GetUserID(c), req.Notes)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, move)
}

// DeleteMove DELETE /stock-moves/:id
func (h *StockHandler) DeleteMove(c *gin.Context) {
	if err := h.svc.DeleteMove(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// CreateLocation POST /locations
func (h *StockHandler) CreateLocation(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	location, err := h.svc.CreateLocation(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, location)
}

// GetLocation GET /locations/:id
func (h *StockHandler) GetLocation(c *gin.Context) {
	location, err := h.svc.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, location)
}

// ListLocations GET /locations
func (h *StockHandler) ListLocations(c *gin.Context) {
	page, pageSize := GetPagination(c)
	locations, total, err := h.svc.ListLocations(c.Request.Context(), boolQuery(c, "is_active"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: locations, Pagination: NewPagination(page, pageSize, total)})
}

// UpdateLocation PUT /locations/:id
func (h *StockHandler) UpdateLocation(c *gin.Context) {
	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	location, err := h.svc.UpdateLocation(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, location)
}

// DeleteLocation DELETE /locations/:id
func (h *StockHandler) DeleteLocation(c *gin.Context) {
	if err := h.svc.DeleteLocation(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "Location deleted"})
}

// Inventory GET /reports/inventory
func (h *StockHandler) Inventory(c *gin.Context) {
	report, err := h.report.Inventory(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, report)
}

// LowStock GET /reports/low-stock
func (h *StockHandler) LowStock(c *gin.Context) {
	products, err := h.report.LowStock(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, products)
}

// MovementSummary GET /reports/movement-summary?product_id=xxx
func (h *StockHandler) MovementSummary(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		BadRequest(c, "product_id is required")
		return
	}

	start, err := dateQuery(c, "start_date")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	end, err := dateQuery(c, "end_date")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	summary, err := h.report.Movement(c.Request.Context(), productID, start, end)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, summary)
}

// ExportInventory GET /reports/inventory/export
func (h *StockHandler) ExportInventory(c *gin.Context) {
	data, err := h.report.ExportInventoryXLSX(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// dateQuery 解析可选日期查询参数，接受 RFC3339 或 2006-01-02
func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%s must be RFC3339 or YYYY-MM-DD", key)
}
