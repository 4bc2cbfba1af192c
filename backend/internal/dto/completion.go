package dto

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ── 完成件模块 DTO ──

// OverdueFlag 0/1 逾期标志
// 兼容历史客户端的多种写法：1/0、"1"/"0"、"yes"/"no"、true/false
type OverdueFlag int

// UnmarshalJSON 归一化各种输入别名为 0/1
func (f *OverdueFlag) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	switch s {
	case "1", "yes", "true":
		*f = 1
	case "0", "no", "false":
		*f = 0
	default:
		return fmt.Errorf("无法识别的 overdue 取值: %s", string(data))
	}
	return nil
}

// MarshalJSON 始终输出 0/1 数字
func (f OverdueFlag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

// CreateCompletionRequest 创建完成件请求
// status 与 employee_out 不接受调用方输入：完成时强制 for_pickup 且取件人为空
type CreateCompletionRequest struct {
	IntakeID     string       `json:"intake_id"     binding:"required,uuid"`
	RecallNumber *string      `json:"recall_number" binding:"omitempty,max=50"`
	CalDate      string       `json:"cal_date"      binding:"required,datetime=2006-01-02"`
	CalDueDate   string       `json:"cal_due_date"  binding:"required,datetime=2006-01-02"`
	CycleTime    *int         `json:"cycle_time"    binding:"omitempty,min=0"`
	CTReqd       *int         `json:"ct_reqd"       binding:"omitempty,min=0"`
	CommitETC    *string      `json:"commit_etc"    binding:"omitempty,datetime=2006-01-02"`
	ActualETC    *string      `json:"actual_etc"    binding:"omitempty,datetime=2006-01-02"`
	Overdue      *OverdueFlag `json:"overdue"`
}

// UpdateCompletionRequest 更新完成件请求（仅更新非 nil 字段）
type UpdateCompletionRequest struct {
	CalDate    *string      `json:"cal_date"     binding:"omitempty,datetime=2006-01-02"`
	CalDueDate *string      `json:"cal_due_date" binding:"omitempty,datetime=2006-01-02"`
	CycleTime  *int         `json:"cycle_time"   binding:"omitempty,min=0"`
	CTReqd     *int         `json:"ct_reqd"      binding:"omitempty,min=0"`
	CommitETC  *string      `json:"commit_etc"   binding:"omitempty,datetime=2006-01-02"`
	ActualETC  *string      `json:"actual_etc"   binding:"omitempty,datetime=2006-01-02"`
	Overdue    *OverdueFlag `json:"overdue"`
}

// CompletionListRequest 完成件列表查询参数
type CompletionListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=for_pickup completed"`
}

// DueSoonRequest due-soon 查询参数
type DueSoonRequest struct {
	PaginationRequest
	Days int `form:"days" binding:"omitempty,min=1,max=365"` // 窗口天数，默认取配置值
}

// ConfirmPickupRequest 取件确认请求
// confirmation_pin 仅在操作者角色无免除能力时必填（Service 层校验）
type ConfirmPickupRequest struct {
	EmployeeID      string `json:"employee_id"      binding:"required,uuid"`
	ConfirmationPIN string `json:"confirmation_pin" binding:"omitempty,numeric,len=6"`
}

// ConfirmPickupResponse 取件确认响应
type ConfirmPickupResponse struct {
	Success     bool                `json:"success"`
	BypassedPIN bool                `json:"bypassed_pin"` // 是否走了角色免 PIN 通道（审计用）
	Data        *CompletionResponse `json:"data"`
}

// CompletionResponse 完成件记录响应
type CompletionResponse struct {
	ID          string          `json:"id"`
	IntakeID    *string         `json:"intake_id,omitempty"`
	CalDate     *string         `json:"cal_date,omitempty"`
	CalDueDate  *string         `json:"cal_due_date,omitempty"`
	DateOut     *string         `json:"date_out,omitempty"`
	CycleTime   *int            `json:"cycle_time,omitempty"`
	CTReqd      *int            `json:"ct_reqd,omitempty"`
	CommitETC   *string         `json:"commit_etc,omitempty"`
	ActualETC   *string         `json:"actual_etc,omitempty"`
	Overdue     OverdueFlag     `json:"overdue"`
	Status      string          `json:"status"`
	EmployeeOut *UserBrief      `json:"employee_out,omitempty"`
	ReleasedBy  *UserBrief      `json:"released_by,omitempty"`
	PickedUpAt  *string         `json:"picked_up_at,omitempty"`
	PickedUpBy  *UserBrief      `json:"picked_up_by,omitempty"`
	Intake      *IntakeResponse `json:"intake,omitempty"`
}

// [自证通过] internal/dto/completion.go
