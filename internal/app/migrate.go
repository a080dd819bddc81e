package app

import (
	"time"

	"go-leave/internal/allocation"
	"go-leave/internal/employee"
	"go-leave/internal/leaverequest"
	"go-leave/internal/leavetype"
	"go-leave/internal/period"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// outbox_events and period_counters are written through raw SQL, so their
// schemas are managed here rather than through entity structs.
const outboxTableDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id            uuid PRIMARY KEY,
	request_id    text,
	aggregate_type text NOT NULL,
	aggregate_id  text NOT NULL,
	event_type    text NOT NULL,
	topic         text NOT NULL,
	payload       jsonb NOT NULL,
	status        text NOT NULL DEFAULT 'pending',
	retry_count   int NOT NULL DEFAULT 0,
	next_retry_at timestamptz NOT NULL DEFAULT now(),
	processed_at  timestamptz,
	error_message text,
	created_at    timestamptz NOT NULL DEFAULT now(),
	updated_at    timestamptz NOT NULL DEFAULT now()
)`

const counterTableDDL = `
CREATE TABLE IF NOT EXISTS period_counters (
	period_id    uuid NOT NULL,
	counter_type text NOT NULL,
	last_value   bigint NOT NULL DEFAULT 0,
	updated_at   timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (period_id, counter_type)
)`

func migrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&leavetype.LeaveType{},
		&period.Period{},
		&allocation.Allocation{},
		&leaverequest.LeaveRequest{},
	); err != nil {
		return err
	}

	if err := db.Exec(outboxTableDDL).Error; err != nil {
		return err
	}
	if err := db.Exec(counterTableDDL).Error; err != nil {
		return err
	}

	if err := seedLeaveTypes(db); err != nil {
		return err
	}
	if err := seedCurrentPeriod(db, time.Now()); err != nil {
		return err
	}

	zap.L().Info("schema migrated and seeded")
	return nil
}

func seedLeaveTypes(db *gorm.DB) error {
	defaults := []leavetype.LeaveType{
		{Name: leavetype.NameAnnual, DefaultDays: 21},
		{Name: leavetype.NameSick, DefaultDays: 5},
		{Name: leavetype.NameParental, DefaultDays: 270},
		{Name: leavetype.NameMiscellaneous, DefaultDays: 5},
	}

	for _, lt := range defaults {
		// Match on name alone: an administrator may have edited the default
		// day count, and the seed must not try to re-insert the category.
		err := db.Where("name = ?", lt.Name).
			Attrs(lt).
			FirstOrCreate(&leavetype.LeaveType{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// seedCurrentPeriod ensures the fiscal year containing asOf exists. The
// cycle runs July 1 through June 30.
func seedCurrentPeriod(db *gorm.DB, asOf time.Time) error {
	startYear := asOf.Year()
	if asOf.Month() < time.July {
		startYear--
	}

	p := period.Period{
		Name:      fiscalYearName(startYear),
		StartDate: time.Date(startYear, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(startYear+1, time.June, 30, 0, 0, 0, 0, time.UTC),
	}

	return db.Where("name = ?", p.Name).
		Attrs(p).
		FirstOrCreate(&period.Period{}).Error
}

func fiscalYearName(startYear int) string {
	return "FY " + time.Date(startYear+1, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}
