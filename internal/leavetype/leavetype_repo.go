package leavetype

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_repo.go -destination=mock/leavetype_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, lt *LeaveType) error
	FindAll(ctx context.Context) ([]LeaveType, error)
	FindByID(ctx context.Context, id string) (*LeaveType, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, lt *LeaveType) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Create(lt).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).First(&lt, "id = ?", id).Error
	return &lt, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LeaveType{}).Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Save(lt).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&LeaveType{}, "id = ?", id).Error
}
