package leaverequest

import (
	"time"

	"go-leave/internal/employee"
	"go-leave/internal/leavetype"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// LeaveRequest is an employee's ask to use leave across a date range.
// TotalDays is derived from the range at creation (inclusive of both ends).
type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestNumber int64     `gorm:"type:bigint;not null"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	LeaveTypeID   uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	TotalDays int       `gorm:"type:int;not null"`
	Comment   string    `gorm:"type:text"`

	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_status"`
	ReviewComment *string    `gorm:"type:text"`
	ReviewedBy    *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee  *employee.Employee   `gorm:"foreignKey:EmployeeID"`
	LeaveType *leavetype.LeaveType `gorm:"foreignKey:LeaveTypeID"`
}

// isAllowedStatusTransition encodes the request state machine: PENDING is
// the only non-terminal status.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	if currentStatus != StatusPending {
		return false
	}

	switch targetStatus {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}
