package model

// Equipment 设备参考目录表 — 对应 equipment
// RecallNumber 延迟赋值：常规进件在进件时赋值，新设备在完成校准时赋值
type Equipment struct {
	EquipmentID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"equipment_id"`
	RecallNumber *string `gorm:"type:varchar(50)"                               json:"recall_number,omitempty"`
	SerialNumber string  `gorm:"type:varchar(100)"                              json:"serial_number,omitempty"`
	Description  string  `gorm:"type:varchar(255);not null"                     json:"description"`
	Manufacturer string  `gorm:"type:varchar(100)"                              json:"manufacturer,omitempty"`
	ModelNo      string  `gorm:"type:varchar(100)"                              json:"model_no,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }
