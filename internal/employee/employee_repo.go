package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Order("last_name ASC, first_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}
