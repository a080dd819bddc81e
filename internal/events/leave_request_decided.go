package events

import "time"

const LeaveRequestDecidedTopic = "leave.request.decision.v1"

type LeaveRequestDecidedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	EmployeeID  string    `json:"employee_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Status      string    `json:"status"`
	ReviewedBy  string    `json:"reviewed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
