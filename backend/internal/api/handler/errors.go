package handler

import (
	"github.com/gin-gonic/gin"

	pkgerrors "caltrack/backend/pkg/errors"
	"caltrack/backend/pkg/response"
)

// 业务错误类别 → 响应码
var kindCodes = map[pkgerrors.Kind]int{
	pkgerrors.KindValidation:     10001,
	pkgerrors.KindAuthentication: 10002,
	pkgerrors.KindAuthorization:  10003,
	pkgerrors.KindConflict:       10004,
	pkgerrors.KindNotFound:       20001,
}

// writeServiceError 将 Service 层错误映射为 HTTP 响应
// validation→422, not_found→404, authentication→401, authorization→403,
// conflict→400，其余一律 500 且不泄露内部细节
func writeServiceError(c *gin.Context, err error) {
	kind, ok := pkgerrors.KindOf(err)
	if !ok {
		response.InternalError(c)
		return
	}

	code := kindCodes[kind]
	msg := err.Error()

	switch kind {
	case pkgerrors.KindValidation:
		response.UnprocessableEntity(c, code, msg)
	case pkgerrors.KindNotFound:
		response.NotFound(c, code, msg)
	case pkgerrors.KindAuthentication:
		response.Unauthorized(c, code, msg)
	case pkgerrors.KindAuthorization:
		response.Forbidden(c, code, msg)
	case pkgerrors.KindConflict:
		response.BadRequest(c, code, msg)
	default:
		response.InternalError(c)
	}
}
