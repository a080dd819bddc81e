package app

import (
	"testing"
	"time"

	"go-leave/internal/leavetype"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSeedFixture(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	assert.NoError(t, err)

	return gormDB, mock
}

// Re-running the seed against a catalog whose day counts an administrator
// already edited must look each category up by name alone and insert
// nothing.
func TestSeedLeaveTypesMatchesOnNameOnly(t *testing.T) {
	gormDB, mock := newSeedFixture(t)

	editedDays := map[string]int{
		leavetype.NameAnnual:        30,
		leavetype.NameSick:          8,
		leavetype.NameParental:      180,
		leavetype.NameMiscellaneous: 2,
	}

	for _, name := range []string{
		leavetype.NameAnnual,
		leavetype.NameSick,
		leavetype.NameParental,
		leavetype.NameMiscellaneous,
	} {
		mock.ExpectQuery(`SELECT (.+) FROM "leave_types" WHERE name = \$1 ORDER BY`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "default_days"}).
				AddRow(uuid.New().String(), name, editedDays[name]))
	}

	assert.NoError(t, seedLeaveTypes(gormDB))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCurrentPeriodReusesExistingFiscalYear(t *testing.T) {
	gormDB, mock := newSeedFixture(t)

	mock.ExpectQuery(`SELECT (.+) FROM "periods" WHERE name = \$1 ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(uuid.New().String(), "FY 2026"))

	asOf := time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC)
	assert.NoError(t, seedCurrentPeriod(gormDB, asOf))
	assert.NoError(t, mock.ExpectationsWereMet())
}
