package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
	"github.com/DeathRay00/trackmint/internal/mfg/service"
	"github.com/DeathRay00/trackmint/internal/mfg/testutil"
	"github.com/DeathRay00/trackmint/internal/middleware"
)

func setupStockTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	stockRepo := repository.NewStockRepository(db)
	productRepo := repository.NewProductRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	svc := service.NewStockService(stockRepo, productRepo, locationRepo)
	reportSvc := service.NewReportService(stockRepo, productRepo)
	h := NewStockHandler(svc, reportSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/stock-moves", middleware.RequirePermission(engine.PermCreateStockMove), h.CreateMove)
	api.GET("/stock-moves", middleware.RequirePermission(engine.PermReadStockMove), h.ListMoves)
	api.PATCH("/stock-moves/:id/notes", middleware.RequirePermission(engine.PermUpdateStockMove), h.UpdateMoveNotes)
	api.POST("/locations", middleware.RequirePermission(engine.PermCreateStockMove), h.CreateLocation)
	api.DELETE("/locations/:id", middleware.RequirePermission(engine.PermDeleteStockMove), h.DeleteLocation)
	api.GET("/reports/inventory", middleware.RequirePermission(engine.PermReadReports), h.Inventory)
	api.GET("/reports/movement-summary", middleware.RequirePermission(engine.PermReadReports), h.MovementSummary)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedStockTestData(t *testing.T, env *testutil.TestEnv) (productID, locationID string) {
	t.Helper()

	product := &entity.Product{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:          "不锈钢螺丝 M4",
		SKU:           "RM-SCREW-M4",
		Category:      "raw_material",
		UnitOfMeasure: "pcs",
		UnitCost:      decimal.NewFromFloat(10.00),
		StockQuantity: 10,
		ReorderLevel:  5,
		IsActive:      true,
	}
	if err := env.DB.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}

	location := &entity.Location{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:     "主仓库",
		Code:     "WH-MAIN",
		IsActive: true,
	}
	if err := env.DB.Create(location).Error; err != nil {
		t.Fatalf("Failed to seed location: %v", err)
	}

	return product.ID, location.ID
}

// TestStockReceiptMovingAverage tests that a receipt re-weights the product's average cost
func TestStockReceiptMovingAverage(t *testing.T) {
	env := setupStockTest(t)
	token := testutil.AdminToken()

	productID, locationID := seedStockTestData(t, env)

	// 10 on hand @ 10.00, receive 10 @ 12.00 => 20 on hand @ 11.00
	body := map[string]interface{}{
		"product_id":  productID,
		"move_type":   "Receipt",
		"quantity":    10,
		"unit_cost":   12.00,
		"location_id": locationID,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stock-moves", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var product entity.Product
	if err := env.DB.Where("id = ?", productID).First(&product).Error; err != nil {
		t.Fatalf("Failed to reload product: %v", err)
	}
	if product.StockQuantity != 20 {
		t.Fatalf("expected stock quantity 20, got %d", product.StockQuantity)
	}
	if !product.UnitCost.Equal(decimal.NewFromFloat(11.00)) {
		t.Fatalf("expected unit cost 11.00, got %s", product.UnitCost)
	}
}

// TestStockIssueInsufficientRejected tests that issuing more than on hand is rejected atomically
func TestStockIssueInsufficientRejected(t *testing.T) {
	env := setupStockTest(t)
	token := testutil.AdminToken()

	productID, locationID := seedStockTestData(t, env)

	body := map[string]interface{}{
		"product_id":  productID,
		"move_type":   "Issue",
		"quantity":    999,
		"location_id": locationID,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stock-moves", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["error_code"] != "INSUFFICIENT_STOCK" {
		t.Fatalf("expected error_code INSUFFICIENT_STOCK, got %v", data["error_code"])
	}

	// Neither the product nor the ledger may change on rejection
	var product entity.Product
	env.DB.Where("id = ?", productID).First(&product)
	if product.StockQuantity != 10 {
		t.Fatalf("expected stock quantity unchanged at 10, got %d", product.StockQuantity)
	}
	var count int64
	env.DB.Model(&entity.StockMove{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no stock moves recorded, got %d", count)
	}
}

// TestStockAdjustmentKeepsCost tests that adjustments change quantity but never the average cost
func TestStockAdjustmentKeepsCost(t *testing.T) {
	env := setupStockTest(t)
	token := testutil.AdminToken()

	productID, locationID := seedStockTestData(t, env)

	body := map[string]interface{}{
		"product_id":  productID,
		"move_type":   "Adjustment",
		"quantity":    -4,
		"location_id": locationID,
		"notes":       "盘亏",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stock-moves", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var product entity.Product
	env.DB.Where("id = ?", productID).First(&product)
	if product.StockQuantity != 6 {
		t.Fatalf("expected stock quantity 6, got %d", product.StockQuantity)
	}
	if !product.UnitCost.Equal(decimal.NewFromFloat(10.00)) {
		t.Fatalf("expected unit cost unchanged at 10.00, got %s", product.UnitCost)
	}
}

// TestStockMoveNotesOnlyMutable tests that only the notes field of a posted move can change
func TestStockMoveNotesOnlyMutable(t *testing.T) {
	env := setupStockTest(t)
	token := testutil.AdminToken()

	productID, locationID := seedStockTestData(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stock-moves", map[string]interface{}{
		"product_id":  productID,
		"move_type":   "Receipt",
		"quantity":    5,
		"unit_cost":   10.00,
		"location_id": locationID,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	moveID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w2 := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/stock-moves/"+moveID+"/notes",
		map[string]interface{}{"notes": "补记来源"}, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}

	var move entity.StockMove
	env.DB.Where("id = ?", moveID).First(&move)
	if move.Notes != "补记来源" {
		t.Fatalf("expected notes updated, got %q", move.Notes)
	}
	if move.Quantity != 5 {
		t.Fatalf("expected quantity unchanged at 5, got %d", move.Quantity)
	}
}

// TestStockMovePermissionDenied tests that a role without the delete permission gets 403
func TestStockMovePermissionDenied(t *testing.T) {
	env := setupStockTest(t)

	_, locationID := seedStockTestData(t, env)

	// Operator can post moves but cannot delete locations
	operatorToken := testutil.GenerateTestToken(uuid.NewString(), "Line Operator", "op@test.com", entity.RoleOperator)
	w := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/locations/"+locationID, nil, operatorToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

// TestMovementSummaryBadDateRejected tests that a malformed date filter is rejected instead of ignored
func TestMovementSummaryBadDateRejected(t *testing.T) {
	env := setupStockTest(t)
	token := testutil.AdminToken()

	productID, _ := seedStockTestData(t, env)

	w := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/reports/movement-summary?product_id="+productID+"&start_date=last-tuesday", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// Well-formed day-only dates still pass
	w2 := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/reports/movement-summary?product_id="+productID+"&start_date=2026-01-01&end_date=2026-12-31", nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
}
