package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	EmployeeNo string `json:"employee_no" binding:"required,max=20"`
	Password   string `json:"password"    binding:"required,min=8,max=64"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"` // Access Token 有效期（秒）
	User         UserBrief `json:"user"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// SetPinRequest 设置取件确认 PIN 请求
type SetPinRequest struct {
	Password string `json:"password" binding:"required"`              // 以登录密码二次确认身份
	Pin      string `json:"pin"      binding:"required,numeric,len=6"` // 6 位数字 PIN
}

// UserDetailResponse 用户详细信息（GET /auth/me）
type UserDetailResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	EmployeeNo   string           `json:"employee_no"`
	Role         string           `json:"role"`
	Department   *DepartmentBrief `json:"department,omitempty"`
	PinConfigured bool            `json:"pin_configured"`
	CreatedAt    string           `json:"created_at"`
}
