package allocation

import (
	"context"
	"testing"
	"time"

	allocationerrors "go-leave/internal/allocation/errors"
	"go-leave/internal/employee"
	"go-leave/internal/leavetype"
	"go-leave/internal/period"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testEmployeeID   = uuid.New()
	testAnnualTypeID = uuid.New()
	testSickTypeID   = uuid.New()
	testPeriodID     = uuid.New()
)

type fakeAllocationRepo struct {
	byID      map[string]*Allocation
	createErr error
	updated   map[string]int
}

func newFakeAllocationRepo() *fakeAllocationRepo {
	return &fakeAllocationRepo{
		byID:    make(map[string]*Allocation),
		updated: make(map[string]int),
	}
}

func (f *fakeAllocationRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAllocationRepo) Create(ctx context.Context, a *Allocation) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *a
	f.byID[a.ID.String()] = &cp
	return nil
}

func (f *fakeAllocationRepo) FindByID(ctx context.Context, id string) (*Allocation, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAllocationRepo) FindByEmployeeAndPeriod(ctx context.Context, employeeID, periodID string) ([]Allocation, error) {
	var out []Allocation
	for _, a := range f.byID {
		if a.EmployeeID.String() == employeeID && a.PeriodID.String() == periodID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAllocationRepo) FindByTriple(ctx context.Context, employeeID, leaveTypeID, periodID string) (*Allocation, error) {
	for _, a := range f.byID {
		if a.EmployeeID.String() == employeeID &&
			a.LeaveTypeID.String() == leaveTypeID &&
			a.PeriodID.String() == periodID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAllocationRepo) UpdateDays(ctx context.Context, id string, days int) (int64, error) {
	a, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	a.Days = days
	f.updated[id] = days
	return 1, nil
}

type fakeTypeService struct {
	types []leavetype.LeaveType
}

func (f *fakeTypeService) GetAll(ctx context.Context) ([]leavetype.LeaveTypeResponse, error) {
	return nil, nil
}

func (f *fakeTypeService) ListAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	return f.types, nil
}

func (f *fakeTypeService) GetByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	for i := range f.types {
		if f.types[i].ID.String() == id {
			return &f.types[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTypeService) Count(ctx context.Context) (int64, error) {
	return int64(len(f.types)), nil
}

func (f *fakeTypeService) Create(ctx context.Context, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return leavetype.LeaveTypeResponse{}, nil
}

func (f *fakeTypeService) Update(ctx context.Context, id string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return leavetype.LeaveTypeResponse{}, nil
}

func (f *fakeTypeService) Delete(ctx context.Context, id string) error { return nil }

type fakePeriodService struct {
	period period.Period
}

func (f *fakePeriodService) CurrentPeriod(ctx context.Context, asOf time.Time) (period.Period, error) {
	return f.period, nil
}

type fakeEmployeeService struct {
	employees map[string]*employee.Employee
	caller    *employee.Employee
}

func (f *fakeEmployeeService) GetCurrentCaller(ctx context.Context) (*employee.Employee, error) {
	return f.caller, nil
}

func (f *fakeEmployeeService) GetEmployeeByID(ctx context.Context, id string) (*employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeEmployeeService) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		out = append(out, *e)
	}
	return out, nil
}

type serviceFixture struct {
	svc  Service
	repo *fakeAllocationRepo
	mock sqlmock.Sqlmock
}

func newServiceFixture(t *testing.T, now time.Time) serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	assert.NoError(t, err)

	repo := newFakeAllocationRepo()

	types := &fakeTypeService{types: []leavetype.LeaveType{
		{ID: testAnnualTypeID, Name: leavetype.NameAnnual, DefaultDays: 21},
		{ID: testSickTypeID, Name: leavetype.NameSick, DefaultDays: 5},
	}}

	emp := &employee.Employee{
		ID:        testEmployeeID,
		FirstName: "Jordan",
		LastName:  "Reyes",
		Email:     "jordan.reyes@example.com",
	}
	employees := &fakeEmployeeService{
		employees: map[string]*employee.Employee{testEmployeeID.String(): emp},
		caller:    emp,
	}

	periods := &fakePeriodService{period: period.Period{
		ID:        testPeriodID,
		Name:      "FY 2026",
		StartDate: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	}}

	svc := NewServiceWithClock(gormDB, repo, types, periods, employees, nil, func() time.Time { return now })

	return serviceFixture{svc: svc, repo: repo, mock: mock}
}

func allocationsByType(repo *fakeAllocationRepo) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, a := range repo.byID {
		out[a.LeaveTypeID] = a.Days
	}
	return out
}

func TestAllocateLeaveFirstHalfGrantsReducedAnnual(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	err := fx.svc.AllocateLeave(context.Background(), testEmployeeID.String())

	assert.NoError(t, err)
	byType := allocationsByType(fx.repo)
	assert.Equal(t, 11, byType[testAnnualTypeID])
	assert.Equal(t, 5, byType[testSickTypeID])
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocateLeaveSecondHalfGrantsFullAnnual(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2025, time.September, 2, 9, 0, 0, 0, time.UTC))
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	err := fx.svc.AllocateLeave(context.Background(), testEmployeeID.String())

	assert.NoError(t, err)
	assert.Equal(t, 21, allocationsByType(fx.repo)[testAnnualTypeID])
}

func TestAllocateLeaveRerunIsIdempotent(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	assert.NoError(t, fx.svc.AllocateLeave(context.Background(), testEmployeeID.String()))
	assert.Len(t, fx.repo.byID, 2)

	// The rerun opens a transaction, finds nothing to insert, and backs out.
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	assert.NoError(t, fx.svc.AllocateLeave(context.Background(), testEmployeeID.String()))
	assert.Len(t, fx.repo.byID, 2)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocateLeaveConcurrentDuplicateIsConflict(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	fx.repo.createErr = &pgconn.PgError{Code: "23505"}

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	err := fx.svc.AllocateLeave(context.Background(), testEmployeeID.String())

	assert.ErrorIs(t, err, allocationerrors.ErrAlreadyAllocated)
}

func TestAllocateLeaveUnknownEmployee(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))

	err := fx.svc.AllocateLeave(context.Background(), uuid.NewString())

	assert.Error(t, err)
	assert.Empty(t, fx.repo.byID)
}

func TestGetEmployeeAllocationsReportsCompleteness(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))

	resp, err := fx.svc.GetEmployeeAllocations(context.Background(), testEmployeeID.String())
	assert.NoError(t, err)
	assert.False(t, resp.IsCompleteAllocation)
	assert.Empty(t, resp.Allocations)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	assert.NoError(t, fx.svc.AllocateLeave(context.Background(), testEmployeeID.String()))

	resp, err = fx.svc.GetEmployeeAllocations(context.Background(), testEmployeeID.String())
	assert.NoError(t, err)
	assert.True(t, resp.IsCompleteAllocation)
	assert.Len(t, resp.Allocations, 2)
	assert.Equal(t, "Jordan", resp.Employee.FirstName)
	assert.Equal(t, "Reyes", resp.Employee.LastName)
}

func TestEditAllocationRejectsNegativeDays(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))

	err := fx.svc.EditAllocation(context.Background(), uuid.NewString(), -1)

	assert.ErrorIs(t, err, allocationerrors.ErrNegativeDays)
}

func TestEditAllocationMissingRowIsNotFound(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))

	err := fx.svc.EditAllocation(context.Background(), uuid.NewString(), 10)

	assert.ErrorIs(t, err, allocationerrors.ErrAllocationNotFound)
}

func TestEditAllocationOverwritesDays(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	assert.NoError(t, fx.svc.AllocateLeave(context.Background(), testEmployeeID.String()))

	var allocID string
	for id, a := range fx.repo.byID {
		if a.LeaveTypeID == testSickTypeID {
			allocID = id
		}
	}

	assert.NoError(t, fx.svc.EditAllocation(context.Background(), allocID, 8))
	assert.Equal(t, 8, fx.repo.byID[allocID].Days)
}

func TestGetCurrentAllocationMissingIsNotFound(t *testing.T) {
	fx := newServiceFixture(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))

	_, err := fx.svc.GetCurrentAllocation(context.Background(), testSickTypeID.String(), testEmployeeID.String())

	assert.ErrorIs(t, err, allocationerrors.ErrAllocationNotFound)
}

// A failure while granting one category must leave nothing behind from the
// same run: the real repository is bound to the transaction, so the first
// insert rolls back with the second.
func TestAllocateLeaveMidRunFailureWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	assert.NoError(t, err)

	repo := NewRepository(gormDB)

	types := &fakeTypeService{types: []leavetype.LeaveType{
		{ID: testAnnualTypeID, Name: leavetype.NameAnnual, DefaultDays: 21},
		{ID: testSickTypeID, Name: leavetype.NameSick, DefaultDays: 5},
	}}
	emp := &employee.Employee{ID: testEmployeeID, FirstName: "Jordan", LastName: "Reyes"}
	employees := &fakeEmployeeService{
		employees: map[string]*employee.Employee{testEmployeeID.String(): emp},
		caller:    emp,
	}
	periods := &fakePeriodService{period: period.Period{
		ID:        testPeriodID,
		Name:      "FY 2026",
		StartDate: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	}}

	svc := NewServiceWithClock(gormDB, repo, types, periods, employees, nil,
		func() time.Time { return time.Date(2025, time.August, 14, 10, 0, 0, 0, time.UTC) })

	// The existence check runs on the pool before the transaction opens.
	mock.ExpectQuery(`SELECT (.+) FROM "allocations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "allocations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "allocations"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = svc.AllocateLeave(context.Background(), testEmployeeID.String())
	assert.Error(t, err)

	// Rollback, not commit, closed the run.
	assert.NoError(t, mock.ExpectationsWereMet())
}
