package leaverequest

import "go-leave/internal/employee"

type CreateLeaveRequestRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Comment     string `json:"comment"`
}

// DraftLeaveRequest is the shape of the pre-submission allocation check.
type DraftLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
}

type ReviewLeaveRequestAction struct {
	Approved *bool  `json:"approved" binding:"required"`
	Comment  string `json:"comment"`
}

type LeaveRequestResponse struct {
	ID            string  `json:"id"`
	RequestNumber int64   `json:"request_number"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	LeaveTypeID   string  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Comment       string  `json:"comment"`
	Status        string  `json:"status"`
	ReviewComment *string `json:"review_comment,omitempty"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ReviewLeaveRequestResponse is the review screen detail: the request plus
// the owning employee's summary.
type ReviewLeaveRequestResponse struct {
	LeaveRequestResponse
	Employee employee.EmployeeResponse `json:"employee"`
}

type ExceedsAllocationResponse struct {
	Exceeds bool `json:"exceeds"`
}
