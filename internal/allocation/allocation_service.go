package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	allocationerrors "go-leave/internal/allocation/errors"
	"go-leave/internal/employee"
	"go-leave/internal/events"
	"go-leave/internal/leavetype"
	kafkamsg "go-leave/internal/messaging/kafka"
	"go-leave/internal/period"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=allocation_service.go -destination=mock/allocation_service_mock.go -package=mock
type Service interface {
	// AllocateLeave creates one allocation per category the employee does
	// not yet hold for the current period. Idempotent; all-or-nothing.
	AllocateLeave(ctx context.Context, employeeID string) error
	// GetEmployeeAllocations returns the employee's current-period summary.
	// An empty employeeID resolves to the authenticated caller.
	GetEmployeeAllocations(ctx context.Context, employeeID string) (EmployeeAllocationsResponse, error)
	GetAllocation(ctx context.Context, id string) (AllocationEditResponse, error)
	EditAllocation(ctx context.Context, id string, days int) error
	// GetCurrentAllocation looks up one allocation for the current period.
	// Absence is a normal condition (the allocation run may not have
	// executed) surfaced as not-found, which callers must handle.
	GetCurrentAllocation(ctx context.Context, leaveTypeID, employeeID string) (*Allocation, error)
	GetLoggedInUserAllocation(ctx context.Context, leaveTypeID string) (*Allocation, error)
	ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	types     leavetype.Service
	periods   period.Service
	employees employee.Service
	outbox    kafkamsg.OutboxRepository
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	types leavetype.Service,
	periods period.Service,
	employees employee.Service,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, types, periods, employees, nil, time.Now, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	types leavetype.Service,
	periods period.Service,
	employees employee.Service,
	outbox kafkamsg.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, types, periods, employees, outbox, time.Now, logger...)
}

// NewServiceWithClock lets tests pin the allocation-run clock; the Annual
// Leave entitlement depends on it.
func NewServiceWithClock(
	db *gorm.DB,
	repo Repository,
	types leavetype.Service,
	periods period.Service,
	employees employee.Service,
	outbox kafkamsg.OutboxRepository,
	now func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("allocation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("allocation.service")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		db:        db,
		repo:      repo,
		types:     types,
		periods:   periods,
		employees: employees,
		outbox:    outbox,
		now:       now,
		logger:    l,
	}
}

func (s *service) AllocateLeave(ctx context.Context, employeeID string) error {
	s.logger.Debug("allocate leave requested", zap.String("employee_id", employeeID))

	if _, err := uuid.Parse(employeeID); err != nil {
		return allocationerrors.ErrInvalidEmployeeID
	}

	emp, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return err
	}

	now := s.now()
	p, err := s.periods.CurrentPeriod(ctx, now)
	if err != nil {
		return err
	}

	types, err := s.types.ListAll(ctx)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByEmployeeAndPeriod(ctx, employeeID, p.ID.String())
	if err != nil {
		return err
	}
	allocated := make(map[uuid.UUID]bool, len(existing))
	for _, a := range existing {
		allocated[a.LeaveTypeID] = true
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("allocate leave begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	granted := make([]events.GrantedAllocation, 0, len(types))
	for _, lt := range types {
		if allocated[lt.ID] {
			// Already holds this category for the period; skip, never
			// duplicate.
			continue
		}

		days := EntitlementFor(lt.Name)(lt.DefaultDays, now)
		a := &Allocation{
			ID:          uuid.New(),
			EmployeeID:  emp.ID,
			LeaveTypeID: lt.ID,
			PeriodID:    p.ID,
			Days:        days,
		}

		if err := qtx.Create(ctx, a); err != nil {
			if isUniqueViolation(err) {
				// A concurrent run inserted the same triple between our
				// existence check and this insert. The unique index is the
				// authoritative guard; give up the whole run.
				s.logger.Warn("allocate leave lost race",
					zap.String("employee_id", employeeID),
					zap.String("leave_type_id", lt.ID.String()),
				)
				return allocationerrors.ErrAlreadyAllocated
			}
			s.logger.Error("allocate leave persist failed",
				zap.String("leave_type_id", lt.ID.String()),
				zap.Error(err),
			)
			return err
		}

		granted = append(granted, events.GrantedAllocation{
			LeaveTypeID: lt.ID.String(),
			Days:        days,
		})
	}

	if len(granted) == 0 {
		s.logger.Debug("allocate leave nothing to do", zap.String("employee_id", employeeID))
		return nil
	}

	if s.outbox != nil {
		if err := s.stageAllocationsGranted(ctx, tx, employeeID, p.ID.String(), granted, now); err != nil {
			s.logger.Error("stage allocations granted event failed", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("allocate leave commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("allocate leave success",
		zap.String("employee_id", employeeID),
		zap.String("period_id", p.ID.String()),
		zap.Int("granted", len(granted)),
	)
	return nil
}

func (s *service) stageAllocationsGranted(
	ctx context.Context,
	tx *gorm.DB,
	employeeID, periodID string,
	granted []events.GrantedAllocation,
	now time.Time,
) error {
	payload, err := json.Marshal(events.AllocationsGrantedEvent{
		EventType:  "allocations.granted",
		EmployeeID: employeeID,
		PeriodID:   periodID,
		Granted:    granted,
		OccurredAt: now.UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafkamsg.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "allocation",
		AggregateID:   employeeID,
		EventType:     "allocations.granted",
		Topic:         events.AllocationsGrantedTopic,
		Payload:       payload,
		Status:        kafkamsg.OutboxStatusPending,
	})
}

func (s *service) GetEmployeeAllocations(ctx context.Context, employeeID string) (EmployeeAllocationsResponse, error) {
	var emp *employee.Employee
	var err error

	if employeeID == "" {
		emp, err = s.employees.GetCurrentCaller(ctx)
	} else {
		emp, err = s.employees.GetEmployeeByID(ctx, employeeID)
	}
	if err != nil {
		return EmployeeAllocationsResponse{}, err
	}

	p, err := s.periods.CurrentPeriod(ctx, s.now())
	if err != nil {
		return EmployeeAllocationsResponse{}, err
	}

	allocations, err := s.repo.FindByEmployeeAndPeriod(ctx, emp.ID.String(), p.ID.String())
	if err != nil {
		return EmployeeAllocationsResponse{}, err
	}

	typesCount, err := s.types.Count(ctx)
	if err != nil {
		return EmployeeAllocationsResponse{}, err
	}

	return EmployeeAllocationsResponse{
		Employee:             employee.MapToResponse(*emp),
		Allocations:          mapToListResponse(allocations),
		IsCompleteAllocation: typesCount == int64(len(allocations)),
	}, nil
}

func (s *service) GetAllocation(ctx context.Context, id string) (AllocationEditResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AllocationEditResponse{}, allocationerrors.ErrInvalidAllocationID
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AllocationEditResponse{}, allocationerrors.ErrAllocationNotFound
		}
		return AllocationEditResponse{}, err
	}

	resp := AllocationEditResponse{
		ID:   a.ID.String(),
		Days: a.Days,
	}
	if a.Employee != nil {
		resp.Employee = employee.MapToResponse(*a.Employee)
	}
	if a.LeaveType != nil {
		resp.LeaveTypeName = a.LeaveType.Name
	}
	return resp, nil
}

// EditAllocation overwrites the day count in place. The caller is a trusted
// administrator; the new value is not re-validated against the catalog
// default.
func (s *service) EditAllocation(ctx context.Context, id string, days int) error {
	if _, err := uuid.Parse(id); err != nil {
		return allocationerrors.ErrInvalidAllocationID
	}
	if days < 0 {
		return allocationerrors.ErrNegativeDays
	}

	rows, err := s.repo.UpdateDays(ctx, id, days)
	if err != nil {
		s.logger.Error("edit allocation failed", zap.String("allocation_id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return allocationerrors.ErrAllocationNotFound
	}

	s.logger.Info("edit allocation success",
		zap.String("allocation_id", id),
		zap.Int("days", days),
	)
	return nil
}

func (s *service) GetCurrentAllocation(ctx context.Context, leaveTypeID, employeeID string) (*Allocation, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, allocationerrors.ErrInvalidEmployeeID
	}

	p, err := s.periods.CurrentPeriod(ctx, s.now())
	if err != nil {
		return nil, err
	}

	a, err := s.repo.FindByTriple(ctx, employeeID, leaveTypeID, p.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, allocationerrors.ErrAllocationNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *service) GetLoggedInUserAllocation(ctx context.Context, leaveTypeID string) (*Allocation, error) {
	caller, err := s.employees.GetCurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetCurrentAllocation(ctx, leaveTypeID, caller.ID.String())
}

func (s *service) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return employee.MapToListResponse(employees), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(a Allocation) AllocationResponse {
	resp := AllocationResponse{
		ID:          a.ID.String(),
		EmployeeID:  a.EmployeeID.String(),
		LeaveTypeID: a.LeaveTypeID.String(),
		PeriodID:    a.PeriodID.String(),
		Days:        a.Days,
	}
	if a.LeaveType != nil {
		resp.LeaveTypeName = a.LeaveType.Name
	}
	if a.Period != nil {
		resp.PeriodName = a.Period.Name
	}
	return resp
}

func mapToListResponse(allocations []Allocation) []AllocationResponse {
	resp := make([]AllocationResponse, len(allocations))
	for i, a := range allocations {
		resp[i] = mapToResponse(a)
	}
	return resp
}
