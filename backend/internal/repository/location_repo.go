package repository

import (
	"context"

	"gorm.io/gorm"

	"caltrack/backend/internal/model"
)

// LocationRepository 存放地点数据访问接口
type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id string) (*model.Location, error)
	Update(ctx context.Context, loc *model.Location) error
	List(ctx context.Context) ([]model.Location, error)
}

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepo 创建 LocationRepository 实例
func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	err := r.db.WithContext(ctx).Where("location_id = ?", id).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) Update(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

func (r *locationRepo) List(ctx context.Context) ([]model.Location, error) {
	var locs []model.Location
	err := r.db.WithContext(ctx).Order("name ASC").Find(&locs).Error
	return locs, err
}
