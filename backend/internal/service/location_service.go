package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/model"
	"caltrack/backend/internal/repository"
	pkgerrors "caltrack/backend/pkg/errors"
)

// LocationService 存放地点业务接口
type LocationService interface {
	Create(ctx context.Context, actor model.Actor, req *dto.CreateLocationRequest) (*dto.LocationBrief, error)
	GetByID(ctx context.Context, id string) (*dto.LocationBrief, error)
	List(ctx context.Context) ([]dto.LocationBrief, error)
	Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateLocationRequest) (*dto.LocationBrief, error)
}

type locationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLocationService 创建 LocationService 实例
func NewLocationService(repo *repository.Repository, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, logger: logger}
}

func (s *locationService) Create(ctx context.Context, actor model.Actor, req *dto.CreateLocationRequest) (*dto.LocationBrief, error) {
	loc := &model.Location{
		Name:     req.Name,
		Plant:    req.Plant,
		IsActive: true,
	}
	loc.CreatedBy = &actor.UserID

	if err := s.repo.Location.Create(ctx, loc); err != nil {
		s.logger.Error("创建地点失败", zap.Error(err))
		return nil, err
	}
	return toLocationBrief(loc), nil
}

func (s *locationService) GetByID(ctx context.Context, id string) (*dto.LocationBrief, error) {
	loc, err := s.repo.Location.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("地点不存在")
		}
		s.logger.Error("查询地点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toLocationBrief(loc), nil
}

func (s *locationService) List(ctx context.Context) ([]dto.LocationBrief, error) {
	locs, err := s.repo.Location.List(ctx)
	if err != nil {
		s.logger.Error("查询地点列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.LocationBrief, 0, len(locs))
	for i := range locs {
		result = append(result, *toLocationBrief(&locs[i]))
	}
	return result, nil
}

func (s *locationService) Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateLocationRequest) (*dto.LocationBrief, error) {
	loc, err := s.repo.Location.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("地点不存在")
		}
		s.logger.Error("查询地点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.Plant != nil {
		loc.Plant = *req.Plant
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}
	loc.UpdatedBy = &actor.UserID

	if err := s.repo.Location.Update(ctx, loc); err != nil {
		s.logger.Error("更新地点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toLocationBrief(loc), nil
}
