package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lr *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	Update(ctx context.Context, lr *LeaveRequest) error
	// SumActiveDays totals the days of non-rejected, non-cancelled requests
	// for one employee and category whose start date falls inside [from, to].
	SumActiveDays(ctx context.Context, employeeID, leaveTypeID string, from, to time.Time, excludeID *string) (int, error)
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

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("LeaveType").
		First(&lr, "id = ?", id).Error
	return &lr, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("LeaveType").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) Update(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(lr).Error
}

func (r *repository) SumActiveDays(ctx context.Context, employeeID, leaveTypeID string, from, to time.Time, excludeID *string) (int, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", leaveTypeID).
		Where("status NOT IN ?", []string{StatusRejected, StatusCancelled}).
		Where("start_date BETWEEN ? AND ?", from, to)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var total sql.NullInt64
	err := db.Select("COALESCE(SUM(total_days), 0)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}
