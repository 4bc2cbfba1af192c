package dto

// ── 通用简要信息 ──

// DepartmentBrief 部门简要信息
type DepartmentBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserBrief 用户简要信息（脱敏）
type UserBrief struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	EmployeeNo string           `json:"employee_no"`
	Role       string           `json:"role"`
	Department *DepartmentBrief `json:"department,omitempty"`
}

// LocationBrief 地点简要信息
type LocationBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Plant string `json:"plant,omitempty"`
}

// EquipmentBrief 设备简要信息
type EquipmentBrief struct {
	ID           string  `json:"id"`
	RecallNumber *string `json:"recall_number,omitempty"`
	SerialNumber string  `json:"serial_number,omitempty"`
	Description  string  `json:"description"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	ModelNo      string  `json:"model_no,omitempty"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
