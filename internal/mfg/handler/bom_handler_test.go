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

func setupBOMTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	bomRepo := repository.NewBOMRepository(db)
	productRepo := repository.NewProductRepository(db)
	wcRepo := repository.NewWorkCenterRepository(db)

	svc := service.NewBOMService(bomRepo, productRepo, wcRepo)
	h := NewBOMHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/boms", middleware.RequirePermission(engine.PermCreateBOM), h.Create)
	api.GET("/boms/:id/cost", middleware.RequirePermission(engine.PermReadBOM), h.Cost)
	api.POST("/boms/:id/components", middleware.RequirePermission(engine.PermUpdateBOM), h.AddComponent)
	api.DELETE("/boms/:id/components/:componentId", middleware.RequirePermission(engine.PermUpdateBOM), h.DeleteComponent)
	api.POST("/boms/:id/operations", middleware.RequirePermission(engine.PermUpdateBOM), h.AddOperation)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedBOMTestData(t *testing.T, env *testutil.TestEnv) (productID, componentProductID, workCenterID string) {
	t.Helper()
	now := time.Now()

	product := &entity.Product{
		Base:          entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:          "智能音箱",
		SKU:           "FG-SPEAKER-01",
		Category:      "finished_good",
		UnitOfMeasure: "pcs",
		IsActive:      true,
	}
	if err := env.DB.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}

	component := &entity.Product{
		Base:          entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:          "扬声器单元",
		SKU:           "RM-DRIVER-01",
		Category:      "raw_material",
		UnitOfMeasure: "pcs",
		UnitCost:      decimal.NewFromFloat(4.00),
		IsActive:      true,
	}
	if err := env.DB.Create(component).Error; err != nil {
		t.Fatalf("Failed to seed component product: %v", err)
	}

	workCenter := &entity.WorkCenter{
		Base:        entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        "总装线",
		Code:        "WC-ASSY-01",
		Capacity:    decimal.NewFromInt(8),
		CostPerHour: decimal.NewFromFloat(60),
		IsActive:    true,
	}
	if err := env.DB.Create(workCenter).Error; err != nil {
		t.Fatalf("Failed to seed work center: %v", err)
	}

	return product.ID, component.ID, workCenter.ID
}

// TestBOMCostRollUp tests that child mutations keep the derived total cost current
func TestBOMCostRollUp(t *testing.T) {
	env := setupBOMTest(t)
	token := testutil.AdminToken()

	productID, componentProductID, workCenterID := seedBOMTestData(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"name":       "音箱BOM",
		"product_id": productID,
		"version":    "v1.0",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	bomID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// 2.5 x 4.00 = 10.00 material
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/boms/"+bomID+"/components", map[string]interface{}{
		"product_id": componentProductID,
		"quantity":   2.5,
		"unit_cost":  4.00,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	componentID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// (30 + 15) minutes at 60/h = 45.00 labor
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/boms/"+bomID+"/operations", map[string]interface{}{
		"work_center_id": workCenterID,
		"sequence":       1,
		"description":    "整机装配",
		"duration":       30,
		"setup_time":     15,
		"cost_per_hour":  60.00,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/boms/"+bomID+"/cost", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["material_cost"] != "10" {
		t.Fatalf("expected material cost 10, got %v", data["material_cost"])
	}
	if data["labor_cost"] != "45" {
		t.Fatalf("expected labor cost 45, got %v", data["labor_cost"])
	}
	if data["total_cost"] != "55" {
		t.Fatalf("expected total cost 55, got %v", data["total_cost"])
	}

	var bom entity.BOM
	env.DB.Where("id = ?", bomID).First(&bom)
	if !bom.TotalCost.Equal(decimal.NewFromFloat(55.00)) {
		t.Fatalf("expected stored total cost 55.00, got %s", bom.TotalCost)
	}

	// Removing the component drops the material share
	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/boms/"+bomID+"/components/"+componentID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Where("id = ?", bomID).First(&bom)
	if !bom.TotalCost.Equal(decimal.NewFromFloat(45.00)) {
		t.Fatalf("expected stored total cost 45.00 after removal, got %s", bom.TotalCost)
	}
}

// TestBOMVersionConflict tests that the same version under one product is rejected
func TestBOMVersionConflict(t *testing.T) {
	env := setupBOMTest(t)
	token := testutil.AdminToken()

	productID, _, _ := seedBOMTestData(t, env)

	body := map[string]interface{}{
		"name":       "音箱BOM",
		"product_id": productID,
		"version":    "v1.0",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/boms", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/boms", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["error_code"] != "CONFLICT_ERROR" {
		t.Fatalf("expected error_code CONFLICT_ERROR, got %v", data["error_code"])
	}
}
