package handler

import (
	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/model"
	"caltrack/backend/pkg/jwt"
	"caltrack/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 从 Gin 上下文构造当前操作者。
// 核心写操作均以显式 Actor 入参，不读取任何隐式会话状态。
func MustGetActor(c *gin.Context) (model.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return model.Actor{}, false
	}

	roleVal, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return model.Actor{}, false
	}
	role, ok := roleVal.(string)
	if !ok || !model.Role(role).Valid() {
		response.Unauthorized(c, 10002, "未认证")
		return model.Actor{}, false
	}

	deptVal, _ := c.Get("department_id")
	deptID, _ := deptVal.(string)

	return model.Actor{
		UserID:       userID,
		Role:         model.Role(role),
		DepartmentID: deptID,
	}, true
}

// MustGetClaims 提取完整 JWT 声明（登出等需要 jti 的场景）。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
