package leavetype

import (
	"time"

	"github.com/google/uuid"
)

// Well-known category names the entitlement and request rules key off.
const (
	NameAnnual        = "Annual Leave"
	NameSick          = "Sick Leave"
	NameParental      = "Parental Leave"
	NameMiscellaneous = "Miscellaneous Leave"
)

// LeaveType is static reference data: a leave category with its default
// entitlement in days.
type LeaveType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	DefaultDays int       `gorm:"type:int;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
