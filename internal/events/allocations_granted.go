package events

import "time"

const AllocationsGrantedTopic = "leave.allocation.lifecycle.v1"

type GrantedAllocation struct {
	LeaveTypeID string `json:"leave_type_id"`
	Days        int    `json:"days"`
}

type AllocationsGrantedEvent struct {
	EventType  string              `json:"event_type"`
	EmployeeID string              `json:"employee_id"`
	PeriodID   string              `json:"period_id"`
	Granted    []GrantedAllocation `json:"granted"`
	OccurredAt time.Time           `json:"occurred_at"`
}
