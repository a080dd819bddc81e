package period

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=period_repo.go -destination=mock/period_repo_mock.go -package=mock
type Repository interface {
	FindContaining(ctx context.Context, asOf time.Time) (*Period, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindContaining(ctx context.Context, asOf time.Time) (*Period, error) {
	var p Period
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", asOf, asOf).
		First(&p).Error
	return &p, err
}
