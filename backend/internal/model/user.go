package model

// User 用户（员工/技术员/管理员）表 — 对应 users
// PinHash 为取件确认 PIN 的 bcrypt 哈希，未设置时为空
type User struct {
	UserID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name               string  `gorm:"type:varchar(100);not null"                     json:"name"`
	EmployeeNo         string  `gorm:"type:varchar(20);not null"                      json:"employee_no"`
	Email              string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash       string  `gorm:"type:varchar(255);not null"                     json:"-"`
	PinHash            *string `gorm:"type:varchar(255)"                              json:"-"`
	Role               Role    `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	DepartmentID       string  `gorm:"type:uuid;not null"                             json:"department_id"`
	MustChangePassword bool    `gorm:"not null;default:false"                         json:"must_change_password"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
