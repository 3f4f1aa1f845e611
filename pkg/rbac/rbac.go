package rbac

import "slices"

// 权限常量
const (
	PermissionRead   = "ledger:read"
	PermissionWrite  = "ledger:write"
	PermissionDelete = "ledger:delete"
	// 审批/驳回追加预算申请
	PermissionDecide = "request:decide"
)

// 角色常量
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionRead,
		PermissionWrite,
	},
	RoleManager: {
		PermissionRead,
		PermissionWrite,
		PermissionDecide,
	},
	RoleAdmin: {
		PermissionRead,
		PermissionWrite,
		PermissionDelete,
		PermissionDecide,
	},
}

// ValidRole 检查角色是否存在
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role, permission string) bool {
	return slices.Contains(rolePermissions[role], permission)
}

// CheckPermission 检查用户是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(subject, role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Subject:    subject,
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Subject    string
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions: " + e.Permission + " required"
}
