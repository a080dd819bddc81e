package allocation

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=allocation_repo.go -destination=mock/allocation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, a *Allocation) error
	FindByID(ctx context.Context, id string) (*Allocation, error)
	FindByEmployeeAndPeriod(ctx context.Context, employeeID, periodID string) ([]Allocation, error)
	FindByTriple(ctx context.Context, employeeID, leaveTypeID, periodID string) (*Allocation, error)
	UpdateDays(ctx context.Context, id string, days int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository to an open transaction so every statement
// issued through it commits or rolls back with the caller's unit of work.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, a *Allocation) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Allocation, error) {
	var a Allocation
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("LeaveType").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByEmployeeAndPeriod(ctx context.Context, employeeID, periodID string) ([]Allocation, error) {
	var allocations []Allocation
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Preload("Period").
		Where("employee_id = ?", employeeID).
		Where("period_id = ?", periodID).
		Find(&allocations).Error
	return allocations, err
}

func (r *repository) FindByTriple(ctx context.Context, employeeID, leaveTypeID, periodID string) (*Allocation, error) {
	var a Allocation
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", leaveTypeID).
		Where("period_id = ?", periodID).
		First(&a).Error
	return &a, err
}

// UpdateDays overwrites the day count in place. A targeted single-column
// update, so concurrent edits cannot lose writes through read-modify-write.
func (r *repository) UpdateDays(ctx context.Context, id string, days int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Allocation{}).
		Where("id = ?", id).
		Update("days", days)
	return res.RowsAffected, res.Error
}
