package handler

import "caltrack/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Intake     *IntakeHandler
	Completion *CompletionHandler
	Department *DepartmentHandler
	Equipment  *EquipmentHandler
	Location   *LocationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Intake:     NewIntakeHandler(svc.Intake),
		Completion: NewCompletionHandler(svc.Completion),
		Department: NewDepartmentHandler(svc.Department),
		Equipment:  NewEquipmentHandler(svc.Equipment),
		Location:   NewLocationHandler(svc.Location),
	}
}
