package handler

import (
	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/service"
	"caltrack/backend/pkg/response"
)

// EquipmentHandler 设备目录模块 HTTP 处理器
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

// NewEquipmentHandler 创建 EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

// List 设备列表（关键字搜索）
// GET /api/v1/equipment
func (h *EquipmentHandler) List(c *gin.Context) {
	var req dto.EquipmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.equipmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Get 设备详情
// GET /api/v1/equipment/:id
func (h *EquipmentHandler) Get(c *gin.Context) {
	item, err := h.equipmentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, item)
}

// Create 创建设备（管理员）
// POST /api/v1/equipment
func (h *EquipmentHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	item, err := h.equipmentSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, item)
}

// Update 更新设备（管理员）
// PUT /api/v1/equipment/:id
func (h *EquipmentHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	item, err := h.equipmentSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, item)
}
