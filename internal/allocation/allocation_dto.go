package allocation

import "go-leave/internal/employee"

type EditAllocationRequest struct {
	Days int `json:"days" binding:"min=0"`
}

type AllocationResponse struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	LeaveTypeName string `json:"leave_type_name,omitempty"`
	PeriodID      string `json:"period_id"`
	PeriodName    string `json:"period_name,omitempty"`
	Days          int    `json:"days"`
}

// EmployeeAllocationsResponse is the per-employee allocation summary.
// IsCompleteAllocation is true iff the employee holds exactly one allocation
// for every defined category in the current period.
type EmployeeAllocationsResponse struct {
	Employee             employee.EmployeeResponse `json:"employee"`
	Allocations          []AllocationResponse      `json:"allocations"`
	IsCompleteAllocation bool                      `json:"is_complete_allocation"`
}

// AllocationEditResponse backs the admin edit screen: the allocation plus
// who it belongs to.
type AllocationEditResponse struct {
	ID            string                    `json:"id"`
	Employee      employee.EmployeeResponse `json:"employee"`
	LeaveTypeName string                    `json:"leave_type_name"`
	Days          int                       `json:"days"`
}
