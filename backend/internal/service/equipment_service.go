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

// EquipmentService 设备目录业务接口
type EquipmentService interface {
	Create(ctx context.Context, actor model.Actor, req *dto.CreateEquipmentRequest) (*dto.EquipmentBrief, error)
	GetByID(ctx context.Context, id string) (*dto.EquipmentBrief, error)
	List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentBrief, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateEquipmentRequest) (*dto.EquipmentBrief, error)
}

type equipmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEquipmentService 创建 EquipmentService 实例
func NewEquipmentService(repo *repository.Repository, logger *zap.Logger) EquipmentService {
	return &equipmentService{repo: repo, logger: logger}
}

func (s *equipmentService) Create(ctx context.Context, actor model.Actor, req *dto.CreateEquipmentRequest) (*dto.EquipmentBrief, error) {
	// 召回号一经设置须全局唯一
	if req.RecallNumber != nil {
		if _, err := s.repo.Equipment.GetByRecallNumber(ctx, *req.RecallNumber); err == nil {
			return nil, pkgerrors.Conflict("召回号 %s 已被使用", *req.RecallNumber)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询召回号失败", zap.Error(err))
			return nil, err
		}
	}

	eq := &model.Equipment{
		RecallNumber: req.RecallNumber,
		SerialNumber: req.SerialNumber,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		ModelNo:      req.ModelNo,
		IsActive:     true,
	}
	eq.CreatedBy = &actor.UserID

	if err := s.repo.Equipment.Create(ctx, eq); err != nil {
		s.logger.Error("创建设备失败", zap.Error(err))
		return nil, err
	}
	return toEquipmentBrief(eq), nil
}

func (s *equipmentService) GetByID(ctx context.Context, id string) (*dto.EquipmentBrief, error) {
	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("设备不存在")
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEquipmentBrief(eq), nil
}

func (s *equipmentService) List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentBrief, int64, error) {
	items, total, err := s.repo.Equipment.List(ctx, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.EquipmentBrief, 0, len(items))
	for i := range items {
		result = append(result, *toEquipmentBrief(&items[i]))
	}
	return result, total, nil
}

func (s *equipmentService) Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateEquipmentRequest) (*dto.EquipmentBrief, error) {
	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("设备不存在")
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.SerialNumber != nil {
		eq.SerialNumber = *req.SerialNumber
	}
	if req.Description != nil {
		eq.Description = *req.Description
	}
	if req.Manufacturer != nil {
		eq.Manufacturer = *req.Manufacturer
	}
	if req.ModelNo != nil {
		eq.ModelNo = *req.ModelNo
	}
	if req.IsActive != nil {
		eq.IsActive = *req.IsActive
	}
	eq.UpdatedBy = &actor.UserID

	if err := s.repo.Equipment.Update(ctx, eq); err != nil {
		s.logger.Error("更新设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEquipmentBrief(eq), nil
}
