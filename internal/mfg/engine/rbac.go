package engine

import "github.com/DeathRay00/trackmint/internal/mfg/entity"

// Permission 动作标签，闭集
type Permission string

const (
	// 用户管理
	PermCreateUser Permission = "create_user"
	PermReadUser   Permission = "read_user"
	PermUpdateUser Permission = "update_user"
	PermDeleteUser Permission = "delete_user"

	// 产品管理
	PermCreateProduct Permission = "create_product"
	PermReadProduct   Permission = "read_product"
	PermUpdateProduct Permission = "update_product"
	PermDeleteProduct Permission = "delete_product"

	// BOM管理
	PermCreateBOM Permission = "create_bom"
	PermReadBOM   Permission = "read_bom"
	PermUpdateBOM Permission = "update_bom"
	PermDeleteBOM Permission = "delete_bom"

	// 工作中心管理
	PermCreateWorkCenter Permission = "create_work_center"
	PermReadWorkCenter   Permission = "read_work_center"
	PermUpdateWorkCenter Permission = "update_work_center"
	PermDeleteWorkCenter Permission = "delete_work_center"

	// 制造订单管理
	PermCreateManufacturingOrder  Permission = "create_manufacturing_order"
	PermReadManufacturingOrder    Permission = "read_manufacturing_order"
	PermUpdateManufacturingOrder  Permission = "update_manufacturing_order"
	PermDeleteManufacturingOrder  Permission = "delete_manufacturing_order"
	PermApproveManufacturingOrder Permission = "approve_manufacturing_order"

	// 工单管理
	PermCreateWorkOrder   Permission = "create_work_order"
	PermReadWorkOrder     Permission = "read_work_order"
	PermUpdateWorkOrder   Permission = "update_work_order"
	PermDeleteWorkOrder   Permission = "delete_work_order"
	PermStartWorkOrder    Permission = "start_work_order"
	PermPauseWorkOrder    Permission = "pause_work_order"
	PermCompleteWorkOrder Permission = "complete_work_order"

	// 库存管理
	PermCreateStockMove Permission = "create_stock_move"
	PermReadStockMove   Permission = "read_stock_move"
	PermUpdateStockMove Permission = "update_stock_move"
	PermDeleteStockMove Permission = "delete_stock_move"

	// 报表
	PermReadReports   Permission = "read_reports"
	PermExportReports Permission = "export_reports"
	PermReadAnalytics Permission = "read_analytics"

	// 系统管理
	PermManageRoles   Permission = "manage_roles"
	PermManageSystem  Permission = "manage_system"
	PermViewAuditLogs Permission = "view_audit_logs"
)

// allPermissions 权限全集，顺序即声明顺序
var allPermissions = []Permission{
	PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
	PermCreateProduct, PermReadProduct, PermUpdateProduct, PermDeleteProduct,
	PermCreateBOM, PermReadBOM, PermUpdateBOM, PermDeleteBOM,
	PermCreateWorkCenter, PermReadWorkCenter, PermUpdateWorkCenter, PermDeleteWorkCenter,
	PermCreateManufacturingOrder, PermReadManufacturingOrder, PermUpdateManufacturingOrder,
	PermDeleteManufacturingOrder, PermApproveManufacturingOrder,
	PermCreateWorkOrder, PermReadWorkOrder, PermUpdateWorkOrder, PermDeleteWorkOrder,
	PermStartWorkOrder, PermPauseWorkOrder, PermCompleteWorkOrder,
	PermCreateStockMove, PermReadStockMove, PermUpdateStockMove, PermDeleteStockMove,
	PermReadReports, PermExportReports, PermReadAnalytics,
	PermManageRoles, PermManageSystem, PermViewAuditLogs,
}

// rolePermissions 角色→权限集的静态映射
// Admin 拥有全集；未知角色映射为空集
var rolePermissions = map[string][]Permission{
	entity.RoleAdmin: allPermissions,
	entity.RoleManufacturingManager: {
		PermCreateManufacturingOrder, PermReadManufacturingOrder, PermUpdateManufacturingOrder,
		PermDeleteManufacturingOrder, PermApproveManufacturingOrder,
		PermCreateWorkOrder, PermReadWorkOrder, PermUpdateWorkOrder, PermDeleteWorkOrder,
		PermStartWorkOrder, PermPauseWorkOrder, PermCompleteWorkOrder,
		PermCreateProduct, PermReadProduct, PermUpdateProduct, PermDeleteProduct,
		PermCreateBOM, PermReadBOM, PermUpdateBOM, PermDeleteBOM,
		PermCreateWorkCenter, PermReadWorkCenter, PermUpdateWorkCenter, PermDeleteWorkCenter,
		PermCreateStockMove, PermReadStockMove, PermUpdateStockMove, PermDeleteStockMove,
		PermReadReports, PermExportReports, PermReadAnalytics,
		PermReadUser,
	},
	entity.RoleOperator: {
		PermReadManufacturingOrder,
		PermReadWorkOrder, PermUpdateWorkOrder,
		PermStartWorkOrder, PermPauseWorkOrder, PermCompleteWorkOrder,
		PermReadProduct, PermReadBOM, PermReadWorkCenter,
		PermReadStockMove, PermCreateStockMove,
	},
	entity.RoleInventoryManager: {
		PermReadProduct, PermUpdateProduct,
		PermCreateStockMove, PermReadStockMove, PermUpdateStockMove, PermDeleteStockMove,
		PermReadManufacturingOrder, PermReadWorkOrder,
		PermReadReports, PermExportReports,
	},
}

// HasPermission 纯谓词：指定角色是否拥有指定权限
func HasPermission(role string, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole 角色的权限列表；未知角色返回空
func PermissionsForRole(role string) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// AllPermissions 权限全集
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}
