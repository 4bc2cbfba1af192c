package dto

// ── 进件模块 DTO ──

// CreateIntakeRequest 创建进件请求
// request_type 决定初始状态：
//   - new_equipment → for_confirmation（新设备，召回号可延迟到完成校准时赋值）
//   - routine       → pending_calibration（目录内设备例行校准）
type CreateIntakeRequest struct {
	RequestType  string  `json:"request_type"  binding:"required,oneof=new_equipment routine"`
	RecallNumber *string `json:"recall_number" binding:"omitempty,max=50"`
	Description  string  `json:"description"   binding:"required,max=255"`
	SerialNumber string  `json:"serial_number" binding:"omitempty,max=100"`
	Manufacturer string  `json:"manufacturer"  binding:"omitempty,max=100"`
	ModelNo      string  `json:"model_no"      binding:"omitempty,max=100"`
	EquipmentID  *string `json:"equipment_id"  binding:"omitempty,uuid"`
	TechnicianID string  `json:"technician_id" binding:"required,uuid"`
	LocationID   string  `json:"location_id"   binding:"required,uuid"`
	EmployeeInID string  `json:"employee_in_id" binding:"required,uuid"`
	DueDate      string  `json:"due_date"      binding:"required,datetime=2006-01-02"`
}

// UpdateIntakeRequest 更新进件请求（仅更新非 nil 字段）
// due_date 创建后不可变，故不提供该字段
type UpdateIntakeRequest struct {
	RecallNumber *string `json:"recall_number" binding:"omitempty,max=50"`
	Description  *string `json:"description"   binding:"omitempty,max=255"`
	SerialNumber *string `json:"serial_number" binding:"omitempty,max=100"`
	Manufacturer *string `json:"manufacturer"  binding:"omitempty,max=100"`
	ModelNo      *string `json:"model_no"      binding:"omitempty,max=100"`
	TechnicianID *string `json:"technician_id" binding:"omitempty,uuid"`
	LocationID   *string `json:"location_id"   binding:"omitempty,uuid"`
}

// IntakeListRequest 进件列表查询参数
type IntakeListRequest struct {
	PaginationRequest
	Status       string `form:"status"        binding:"omitempty,oneof=for_confirmation pending_calibration completed"`
	TechnicianID string `form:"technician_id" binding:"omitempty,uuid"`
	LocationID   string `form:"location_id"   binding:"omitempty,uuid"`
	DateFrom     string `form:"date_from"     binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"date_to"       binding:"omitempty,datetime=2006-01-02"`
}

// IntakeResponse 进件记录响应
type IntakeResponse struct {
	ID           string              `json:"id"`
	RecallNumber *string             `json:"recall_number,omitempty"`
	Description  string              `json:"description"`
	SerialNumber string              `json:"serial_number,omitempty"`
	Manufacturer string              `json:"manufacturer,omitempty"`
	ModelNo      string              `json:"model_no,omitempty"`
	DateIn       string              `json:"date_in"`
	DueDate      string              `json:"due_date"`
	Status       string              `json:"status"`
	Equipment    *EquipmentBrief     `json:"equipment,omitempty"`
	Technician   *UserBrief          `json:"technician,omitempty"`
	Location     *LocationBrief      `json:"location,omitempty"`
	EmployeeIn   *UserBrief          `json:"employee_in,omitempty"`
	ReceivedBy   *UserBrief          `json:"received_by,omitempty"`
	Completion   *CompletionResponse `json:"completion,omitempty"`
}

// [自证通过] internal/dto/intake.go
