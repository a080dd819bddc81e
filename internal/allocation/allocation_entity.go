package allocation

import (
	"time"

	"go-leave/internal/employee"
	"go-leave/internal/leavetype"
	"go-leave/internal/period"

	"github.com/google/uuid"
)

// Allocation is the number of days of one leave category an employee may use
// within one period. The composite unique index is the authoritative guard
// against double allocation; the engine's existence check is an optimization.
type Allocation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_employee_type_period"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_employee_type_period"`
	PeriodID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_employee_type_period"`
	Days        int       `gorm:"type:int;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee  *employee.Employee   `gorm:"foreignKey:EmployeeID"`
	LeaveType *leavetype.LeaveType `gorm:"foreignKey:LeaveTypeID"`
	Period    *period.Period       `gorm:"foreignKey:PeriodID"`
}
