package handler

import (
	"net/http"
	"regexp"
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

func setupOrderTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	bomRepo := repository.NewBOMRepository(db)

	svc := service.NewOrderService(orderRepo, productRepo, bomRepo)
	h := NewOrderHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/manufacturing-orders", middleware.RequirePermission(engine.PermCreateManufacturingOrder), h.CreateMO)
	api.GET("/manufacturing-orders/:id", middleware.RequirePermission(engine.PermReadManufacturingOrder), h.GetMO)
	api.POST("/manufacturing-orders/:id/cancel", middleware.RequirePermission(engine.PermUpdateManufacturingOrder), h.CancelMO)
	api.POST("/work-orders", middleware.RequirePermission(engine.PermCreateWorkOrder), h.CreateWO)
	api.PATCH("/work-orders/:id/status", middleware.RequirePermission(engine.PermUpdateWorkOrder), h.UpdateWOStatus)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// seedOrderTestData creates a product with an active BOM carrying one operation
func seedOrderTestData(t *testing.T, env *testutil.TestEnv) (productID, bomID, operationID string) {
	t.Helper()
	now := time.Now()

	product := &entity.Product{
		Base:          entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:          "铝合金支架",
		SKU:           "FG-BRACKET-01",
		Category:      "finished_good",
		UnitOfMeasure: "pcs",
		IsActive:      true,
	}
	if err := env.DB.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}

	workCenter := &entity.WorkCenter{
		Base:        entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        "CNC加工中心",
		Code:        "WC-CNC-01",
		CostPerHour: decimal.NewFromFloat(60),
		Capacity:    decimal.NewFromInt(8),
		IsActive:    true,
	}
	if err := env.DB.Create(workCenter).Error; err != nil {
		t.Fatalf("Failed to seed work center: %v", err)
	}

	bom := &entity.BOM{
		Base:      entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:      "支架BOM",
		ProductID: product.ID,
		Version:   "v1.0",
		IsActive:  true,
	}
	if err := env.DB.Create(bom).Error; err != nil {
		t.Fatalf("Failed to seed BOM: %v", err)
	}

	operation := &entity.BOMOperation{
		Base:         entity.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		BOMID:        bom.ID,
		WorkCenterID: workCenter.ID,
		Sequence:     1,
		Description:  "铣削外形",
		Duration:     30,
		SetupTime:    10,
		CostPerHour:  decimal.NewFromFloat(60),
	}
	if err := env.DB.Create(operation).Error; err != nil {
		t.Fatalf("Failed to seed BOM operation: %v", err)
	}

	return product.ID, bom.ID, operation.ID
}

func createTestMO(t *testing.T, env *testutil.TestEnv, token, productID, bomID string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"product_id":         productID,
		"bom_id":             bomID,
		"quantity":           50,
		"planned_start_date": time.Now().Format(time.RFC3339),
		"planned_end_date":   time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/manufacturing-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating MO, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func createTestWO(t *testing.T, env *testutil.TestEnv, token, moID, operationID, operatorID string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"manufacturing_order_id": moID,
		"bom_operation_id":       operationID,
		"assigned_operator_id":   operatorID,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating WO, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

// TestMOCreateNumberAndDefaults tests day-scoped order numbering and default status
func TestMOCreateNumberAndDefaults(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.AdminToken()

	productID, bomID, _ := seedOrderTestData(t, env)

	mo := createTestMO(t, env, token, productID, bomID)
	pattern := regexp.MustCompile(`^MO-\d{8}-0001$`)
	if !pattern.MatchString(mo["order_number"].(string)) {
		t.Fatalf("expected order number MO-YYYYMMDD-0001, got %v", mo["order_number"])
	}
	if mo["status"] != string(entity.MOStatusPlanned) {
		t.Fatalf("expected status Planned, got %v", mo["status"])
	}
	if mo["priority"] != string(entity.PriorityNormal) {
		t.Fatalf("expected default priority Normal, got %v", mo["priority"])
	}

	// Sequence continues within the day
	mo2 := createTestMO(t, env, token, productID, bomID)
	pattern2 := regexp.MustCompile(`^MO-\d{8}-0002$`)
	if !pattern2.MatchString(mo2["order_number"].(string)) {
		t.Fatalf("expected order number MO-YYYYMMDD-0002, got %v", mo2["order_number"])
	}
}

// TestMOQuantityLimit tests the upper quantity bound on manufacturing orders
func TestMOQuantityLimit(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.AdminToken()

	productID, bomID, _ := seedOrderTestData(t, env)

	body := map[string]interface{}{
		"product_id":         productID,
		"bom_id":             bomID,
		"quantity":           10001,
		"planned_start_date": time.Now().Format(time.RFC3339),
		"planned_end_date":   time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/manufacturing-orders", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["error_code"] != "QUANTITY_LIMIT_EXCEEDED" {
		t.Fatalf("expected error_code QUANTITY_LIMIT_EXCEEDED, got %v", data["error_code"])
	}
}

// TestWOLifecycleCascade tests work order transitions and the cascade onto the parent order
func TestWOLifecycleCascade(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.AdminToken()

	productID, bomID, operationID := seedOrderTestData(t, env)
	mo := createTestMO(t, env, token, productID, bomID)
	moID := mo["id"].(string)

	wo1 := createTestWO(t, env, token, moID, operationID, "")
	wo2 := createTestWO(t, env, token, moID, operationID, "")
	if wo1["planned_duration"].(float64) != 40 {
		t.Fatalf("expected planned duration 40 (30 work + 10 setup), got %v", wo1["planned_duration"])
	}

	// Ready -> Completed skips Started and must be rejected
	w := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo1["id"].(string)+"/status",
		map[string]interface{}{"status": "Completed"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for illegal transition, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["error_code"] != "INVALID_STATUS_TRANSITION" {
		t.Fatalf("expected error_code INVALID_STATUS_TRANSITION, got %v", data["error_code"])
	}

	// First start pulls the order into In Progress
	w = testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo1["id"].(string)+"/status",
		map[string]interface{}{"status": "Started"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reloaded entity.ManufacturingOrder
	env.DB.Where("id = ?", moID).First(&reloaded)
	if reloaded.Status != entity.MOStatusInProgress {
		t.Fatalf("expected MO In Progress after first start, got %s", reloaded.Status)
	}
	if reloaded.ActualStartDate == nil {
		t.Fatal("expected actual start date to be stamped")
	}

	// Completing one of two work orders leaves the order in progress
	w = testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo1["id"].(string)+"/status",
		map[string]interface{}{"status": "Completed"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Where("id = ?", moID).First(&reloaded)
	if reloaded.Status != entity.MOStatusInProgress {
		t.Fatalf("expected MO still In Progress, got %s", reloaded.Status)
	}

	// Completing the last sibling flips the order to Done
	for _, status := range []string{"Started", "Completed"} {
		w = testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo2["id"].(string)+"/status",
			map[string]interface{}{"status": status}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", status, w.Code, w.Body.String())
		}
	}
	env.DB.Where("id = ?", moID).First(&reloaded)
	if reloaded.Status != entity.MOStatusDone {
		t.Fatalf("expected MO Done after all work orders complete, got %s", reloaded.Status)
	}
	if reloaded.ActualEndDate == nil {
		t.Fatal("expected actual end date to be stamped")
	}
}

// TestWOOperatorOwnership tests that an operator can only move their own work orders
func TestWOOperatorOwnership(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.AdminToken()

	productID, bomID, operationID := seedOrderTestData(t, env)
	mo := createTestMO(t, env, token, productID, bomID)

	owner := uuid.NewString()
	wo := createTestWO(t, env, token, mo["id"].(string), operationID, owner)

	// A different operator is rejected
	stranger := testutil.GenerateTestToken(uuid.NewString(), "Other Operator", "other@test.com", entity.RoleOperator)
	w := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo["id"].(string)+"/status",
		map[string]interface{}{"status": "Started"}, stranger)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// The assigned operator goes through
	assigned := testutil.GenerateTestToken(owner, "Assigned Operator", "owner@test.com", entity.RoleOperator)
	w = testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo["id"].(string)+"/status",
		map[string]interface{}{"status": "Started"}, assigned)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// TestMOCancelCascade tests that canceling an order cancels its open work orders
func TestMOCancelCascade(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.AdminToken()

	productID, bomID, operationID := seedOrderTestData(t, env)
	mo := createTestMO(t, env, token, productID, bomID)
	moID := mo["id"].(string)

	wo1 := createTestWO(t, env, token, moID, operationID, "")
	wo2 := createTestWO(t, env, token, moID, operationID, "")

	// Complete the first work order, leave the second open
	for _, status := range []string{"Started", "Completed"} {
		w := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo1["id"].(string)+"/status",
			map[string]interface{}{"status": status}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", status, w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/manufacturing-orders/"+moID+"/cancel", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded entity.ManufacturingOrder
	env.DB.Where("id = ?", moID).First(&reloaded)
	if reloaded.Status != entity.MOStatusCanceled {
		t.Fatalf("expected MO Canceled, got %s", reloaded.Status)
	}

	var first, second entity.WorkOrder
	env.DB.Where("id = ?", wo1["id"].(string)).First(&first)
	env.DB.Where("id = ?", wo2["id"].(string)).First(&second)
	if first.Status != entity.WOStatusCompleted {
		t.Fatalf("expected completed work order untouched, got %s", first.Status)
	}
	if second.Status != entity.WOStatusCanceled {
		t.Fatalf("expected open work order canceled, got %s", second.Status)
	}
}

// TestWOStatusDoubleCompleteRejected tests that completing an already completed work order fails
func TestWOStatusDoubleCompleteRejected(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.AdminToken()

	productID, bomID, operationID := seedOrderTestData(t, env)
	mo := createTestMO(t, env, token, productID, bomID)
	wo := createTestWO(t, env, token, mo["id"].(string), operationID, "")

	for _, status := range []string{"Started", "Completed"} {
		w := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo["id"].(string)+"/status",
			map[string]interface{}{"status": status}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 moving to %s, got %d: %s", status, w.Code, w.Body.String())
		}
	}

	// The second completion re-reads the row under lock and must see the terminal state
	w := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/work-orders/"+wo["id"].(string)+"/status",
		map[string]interface{}{"status": "Completed"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["error_code"] != "INVALID_STATUS_TRANSITION" {
		t.Fatalf("expected error_code INVALID_STATUS_TRANSITION, got %v", data["error_code"])
	}
}
