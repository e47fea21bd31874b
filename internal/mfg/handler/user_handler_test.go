package handler

import (
	"net/http"
	"testing"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
	"github.com/DeathRay00/trackmint/internal/mfg/service"
	"github.com/DeathRay00/trackmint/internal/mfg/testutil"
	"github.com/DeathRay00/trackmint/internal/middleware"
)

func setupUserTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	userRepo := repository.NewUserRepository(db)
	svc := service.NewUserService(userRepo)
	h := NewUserHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/users", middleware.RequirePermission(engine.PermReadUser), h.List)
	api.PUT("/users/me", h.UpdateMe)
	api.GET("/users/:id", middleware.RequirePermission(engine.PermReadUser), h.Get)
	api.PUT("/users/:id", middleware.RequirePermission(engine.PermUpdateUser), h.Update)
	api.DELETE("/users/:id", middleware.RequirePermission(engine.PermDeleteUser), h.Delete)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestUserListAndRoleChange tests admin user administration including role assignment
func TestUserListAndRoleChange(t *testing.T) {
	env := setupUserTest(t)
	token := testutil.AdminToken()

	operator := testutil.SeedTestUser(t, env.DB, "op@test.com", entity.RoleOperator)
	testutil.SeedTestUser(t, env.DB, "inv@test.com", entity.RoleInventoryManager)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/users", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 users, got %d", len(items))
	}

	// Promote the operator
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/users/"+operator.ID,
		map[string]interface{}{"role": entity.RoleManufacturingManager}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded entity.User
	env.DB.Where("id = ?", operator.ID).First(&reloaded)
	if reloaded.Role != entity.RoleManufacturingManager {
		t.Fatalf("expected role ManufacturingManager, got %s", reloaded.Role)
	}

	// Unknown role is rejected
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/users/"+operator.ID,
		map[string]interface{}{"role": "Superuser"}, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

// TestUserSelfUpdateCannotEscalate tests that PUT /users/me never changes role or active flag
func TestUserSelfUpdateCannotEscalate(t *testing.T) {
	env := setupUserTest(t)

	operator := testutil.SeedTestUser(t, env.DB, "self@test.com", entity.RoleOperator)
	token := testutil.GenerateTestToken(operator.ID, "Self User", operator.Email, entity.RoleOperator)

	// Profile fields go through
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/users/me",
		map[string]interface{}{"first_name": "改名"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reloaded entity.User
	env.DB.Where("id = ?", operator.ID).First(&reloaded)
	if reloaded.FirstName != "改名" {
		t.Fatalf("expected first name updated, got %s", reloaded.FirstName)
	}

	// Role change through the self endpoint is rejected
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/users/me",
		map[string]interface{}{"role": entity.RoleAdmin}, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Where("id = ?", operator.ID).First(&reloaded)
	if reloaded.Role != entity.RoleOperator {
		t.Fatalf("expected role unchanged, got %s", reloaded.Role)
	}

	// Operator role has no user administration permissions
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/users", nil, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

// TestUserDeleteDeactivates tests that deletion soft-retires and deactivates the account
func TestUserDeleteDeactivates(t *testing.T) {
	env := setupUserTest(t)
	token := testutil.AdminToken()

	user := testutil.SeedTestUser(t, env.DB, "gone@test.com", entity.RoleOperator)

	w := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/users/"+user.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded entity.User
	env.DB.Where("id = ?", user.ID).First(&reloaded)
	if reloaded.DeletedAt == nil {
		t.Fatal("expected user soft-deleted")
	}
	if reloaded.IsActive {
		t.Fatal("expected user deactivated")
	}

	// Gone from the listing
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/users/"+user.ID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
