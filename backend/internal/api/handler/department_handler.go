package handler

import (
	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/service"
	"caltrack/backend/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// List 部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, depts)
}

// Get 部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.deptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, dept)
}

// Create 创建部门（管理员）
// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, dept)
}

// Update 更新部门（管理员）
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, dept)
}
