package service

import (
	"go.uber.org/zap"

	"caltrack/backend/config"
	"caltrack/backend/internal/repository"
	"caltrack/backend/pkg/jwt"
	"caltrack/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Intake     IntakeService
	Completion CompletionService
	Department DepartmentService
	Equipment  EquipmentService
	Location   LocationService
}

// NewService 创建 Service 聚合
// rdb 允许为 nil：Redis 不可用时登出黑名单降级为空操作
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Intake:     NewIntakeService(repo, logger),
		Completion: NewCompletionService(cfg, repo, logger),
		Department: NewDepartmentService(repo, logger),
		Equipment:  NewEquipmentService(repo, logger),
		Location:   NewLocationService(repo, logger),
	}
}
