package handler

import (
	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/service"
	"caltrack/backend/pkg/response"
)

// LocationHandler 存放地点模块 HTTP 处理器
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler 创建 LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// List 地点列表
// GET /api/v1/locations
func (h *LocationHandler) List(c *gin.Context) {
	locs, err := h.locationSvc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, locs)
}

// Get 地点详情
// GET /api/v1/locations/:id
func (h *LocationHandler) Get(c *gin.Context) {
	loc, err := h.locationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, loc)
}

// Create 创建地点（管理员）
// POST /api/v1/locations
func (h *LocationHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	loc, err := h.locationSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, loc)
}

// Update 更新地点（管理员）
// PUT /api/v1/locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, 10001, "参数校验失败")
		return
	}

	loc, err := h.locationSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, loc)
}
