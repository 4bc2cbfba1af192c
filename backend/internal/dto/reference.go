package dto

// ── 参考实体模块 DTO（部门 / 设备 / 地点）──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name        string `json:"name"        binding:"required,max=50"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// DepartmentResponse 部门响应
type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// CreateEquipmentRequest 创建设备请求
type CreateEquipmentRequest struct {
	RecallNumber *string `json:"recall_number" binding:"omitempty,max=50"`
	SerialNumber string  `json:"serial_number" binding:"omitempty,max=100"`
	Description  string  `json:"description"   binding:"required,max=255"`
	Manufacturer string  `json:"manufacturer"  binding:"omitempty,max=100"`
	ModelNo      string  `json:"model_no"      binding:"omitempty,max=100"`
}

// UpdateEquipmentRequest 更新设备请求
type UpdateEquipmentRequest struct {
	SerialNumber *string `json:"serial_number" binding:"omitempty,max=100"`
	Description  *string `json:"description"   binding:"omitempty,max=255"`
	Manufacturer *string `json:"manufacturer"  binding:"omitempty,max=100"`
	ModelNo      *string `json:"model_no"      binding:"omitempty,max=100"`
	IsActive     *bool   `json:"is_active"`
}

// EquipmentListRequest 设备列表查询参数
type EquipmentListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateLocationRequest 创建地点请求
type CreateLocationRequest struct {
	Name  string `json:"name"  binding:"required,max=100"`
	Plant string `json:"plant" binding:"omitempty,max=100"`
}

// UpdateLocationRequest 更新地点请求
type UpdateLocationRequest struct {
	Name     *string `json:"name"  binding:"omitempty,max=100"`
	Plant    *string `json:"plant" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}
