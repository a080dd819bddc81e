package period

import (
	"time"

	"github.com/google/uuid"
)

// Period is a fixed date interval (e.g. a fiscal year) against which
// allocations and requests are scoped. Immutable once created; periods do
// not overlap and exactly one contains any given date.
type Period struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(100);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_periods_range"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_periods_range"`
	CreatedAt time.Time
}

// Contains reports whether t falls inside [StartDate, EndDate].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}
