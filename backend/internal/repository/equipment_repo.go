package repository

import (
	"context"

	"gorm.io/gorm"

	"caltrack/backend/internal/model"
)

// EquipmentRepository 设备目录数据访问接口
type EquipmentRepository interface {
	Create(ctx context.Context, eq *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	GetByRecallNumber(ctx context.Context, recallNumber string) (*model.Equipment, error)
	Update(ctx context.Context, eq *model.Equipment) error
	// SetRecallNumber 为设备补记召回号（新设备完成校准时赋值）
	SetRecallNumber(ctx context.Context, id, recallNumber, operatorID string) error
	List(ctx context.Context, keyword string, offset, limit int) ([]model.Equipment, int64, error)
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, eq *model.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.WithContext(ctx).Where("equipment_id = ?", id).First(&eq).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepo) GetByRecallNumber(ctx context.Context, recallNumber string) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.WithContext(ctx).Where("recall_number = ?", recallNumber).First(&eq).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepo) Update(ctx context.Context, eq *model.Equipment) error {
	return r.db.WithContext(ctx).Save(eq).Error
}

func (r *equipmentRepo) SetRecallNumber(ctx context.Context, id, recallNumber, operatorID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("equipment_id = ?", id).
		Updates(map[string]interface{}{
			"recall_number": recallNumber,
			"updated_by":    operatorID,
		}).Error
}

func (r *equipmentRepo) List(ctx context.Context, keyword string, offset, limit int) ([]model.Equipment, int64, error) {
	var items []model.Equipment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Equipment{})
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("description ILIKE ? OR serial_number ILIKE ? OR recall_number ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
