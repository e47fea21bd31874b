package engine

import (
	"testing"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

func TestAdminHasFullPermissionUniverse(t *testing.T) {
	for _, perm := range AllPermissions() {
		if !HasPermission(entity.RoleAdmin, perm) {
			t.Errorf("Admin should have %s", perm)
		}
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	for _, perm := range AllPermissions() {
		if HasPermission("Intern", perm) {
			t.Errorf("Unknown role should not have %s", perm)
		}
	}
	if got := PermissionsForRole("Intern"); len(got) != 0 {
		t.Errorf("Expected empty permission set, got %v", got)
	}
}

func TestOperatorPermissions(t *testing.T) {
	allowed := []Permission{
		PermReadWorkOrder, PermUpdateWorkOrder,
		PermStartWorkOrder, PermPauseWorkOrder, PermCompleteWorkOrder,
		PermCreateStockMove, PermReadProduct,
	}
	for _, perm := range allowed {
		if !HasPermission(entity.RoleOperator, perm) {
			t.Errorf("Operator should have %s", perm)
		}
	}

	denied := []Permission{
		PermCreateManufacturingOrder, PermDeleteProduct,
		PermManageSystem, PermDeleteStockMove, PermUpdateProduct,
	}
	for _, perm := range denied {
		if HasPermission(entity.RoleOperator, perm) {
			t.Errorf("Operator should not have %s", perm)
		}
	}
}

func TestInventoryManagerPermissions(t *testing.T) {
	if !HasPermission(entity.RoleInventoryManager, PermDeleteStockMove) {
		t.Error("InventoryManager should manage stock moves")
	}
	if HasPermission(entity.RoleInventoryManager, PermCreateWorkOrder) {
		t.Error("InventoryManager should not create work orders")
	}
}

func TestHasPermissionIsPure(t *testing.T) {
	// 两次调用结果一致，且 AllPermissions 返回副本
	perms := AllPermissions()
	perms[0] = Permission("tampered")
	if !HasPermission(entity.RoleAdmin, PermCreateUser) {
		t.Error("Mutating the returned slice must not affect the table")
	}
}
