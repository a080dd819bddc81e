package leaverequest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-leave/internal/allocation"
	allocationerrors "go-leave/internal/allocation/errors"
	"go-leave/internal/employee"
	"go-leave/internal/events"
	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/leavetype"
	kafkamsg "go-leave/internal/messaging/kafka"
	"go-leave/internal/period"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requestCounterType = "leave_request"

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	// Create validates a draft against the caller's allocation and the
	// category rules, then persists it as PENDING. Validation runs entirely
	// before any write; failures come back as a field-level list.
	Create(ctx context.Context, callerID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	// Cancel is permitted only to the owning employee while PENDING.
	Cancel(ctx context.Context, callerID, id string) (LeaveRequestResponse, error)
	GetEmployeeLeaveRequests(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	// AdminGetAllLeaveRequests assumes the caller's privilege was checked by
	// the authorization layer in front of the engine.
	AdminGetAllLeaveRequests(ctx context.Context) ([]LeaveRequestResponse, error)
	GetLeaveRequestForReview(ctx context.Context, id string) (ReviewLeaveRequestResponse, error)
	Review(ctx context.Context, reviewerID, id string, approved bool, comment string) (LeaveRequestResponse, error)
	// DatesExceedAllocation is the side-effect-free pre-submission check.
	DatesExceedAllocation(ctx context.Context, employeeID string, draft DraftLeaveRequest) (bool, error)
}

type service struct {
	db          *gorm.DB
	repo        Repository
	types       leavetype.Service
	allocations allocation.Service
	periods     period.Service
	counter     counter.Repository
	outbox      kafkamsg.OutboxRepository
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	types leavetype.Service,
	allocations allocation.Service,
	periods period.Service,
	counterRepo counter.Repository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, types, allocations, periods, counterRepo, nil, time.Now, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	types leavetype.Service,
	allocations allocation.Service,
	periods period.Service,
	counterRepo counter.Repository,
	outbox kafkamsg.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, types, allocations, periods, counterRepo, outbox, time.Now, logger...)
}

// NewServiceWithClock lets tests pin the submission clock; the Annual Leave
// second-half rule depends on it.
func NewServiceWithClock(
	db *gorm.DB,
	repo Repository,
	types leavetype.Service,
	allocations allocation.Service,
	periods period.Service,
	counterRepo counter.Repository,
	outbox kafkamsg.OutboxRepository,
	now func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		db:          db,
		repo:        repo,
		types:       types,
		allocations: allocations,
		periods:     periods,
		counter:     counterRepo,
		outbox:      outbox,
		now:         now,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, callerID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("create leave request",
		zap.String("employee_id", callerID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(callerID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidEmployeeID
	}
	leaveTypeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveTypeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	// Category must exist before any category-specific rule runs.
	lt, err := s.types.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	if startDate.After(endDate) {
		return LeaveRequestResponse{}, apperror.Validation(apperror.FieldError{
			Field:   "end_date",
			Message: "start_date must be before or equal to end_date",
		})
	}

	now := s.now()
	requestedDays := daysInclusive(startDate, endDate)

	alloc, err := s.allocations.GetCurrentAllocation(ctx, req.LeaveTypeID, callerID)
	if err != nil {
		if errors.Is(err, allocationerrors.ErrAllocationNotFound) {
			// Normal condition: the allocation run never executed for this
			// employee/category. Reject the draft, do not fail hard.
			return LeaveRequestResponse{}, apperror.Validation(apperror.FieldError{
				Field:   "leave_type_id",
				Message: "no allocation exists for this leave type in the current period",
			})
		}
		return LeaveRequestResponse{}, err
	}

	p, err := s.periods.CurrentPeriod(ctx, now)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	// Collect every remaining violation so the caller can fix them at once.
	var fields []apperror.FieldError

	exceeds, err := s.exceedsRemaining(ctx, callerID, req.LeaveTypeID, requestedDays, alloc.Days, p)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if exceeds {
		fields = append(fields, apperror.FieldError{
			Field:   "end_date",
			Message: "you have exceeded your allocation",
		})
	}

	if rule := RuleFor(lt.Name); rule != nil {
		if fe := rule(RuleContext{
			RequestedDays:  requestedDays,
			AllocationDays: alloc.Days,
			Now:            now,
		}); fe != nil {
			fields = append(fields, *fe)
		}
	}

	if len(fields) > 0 {
		s.logger.Warn("create leave request validation failed",
			zap.String("employee_id", callerID),
			zap.Int("violations", len(fields)),
		)
		return LeaveRequestResponse{}, apperror.Validation(fields...)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(tx.Error))
		return LeaveRequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	requestNumber, err := s.counter.GetNextValue(ctx, p.ID.String(), requestCounterType)
	if err != nil {
		s.logger.Error("issue request number failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	lr := &LeaveRequest{
		ID:            uuid.New(),
		RequestNumber: requestNumber,
		EmployeeID:    employeeUUID,
		LeaveTypeID:   leaveTypeUUID,
		StartDate:     startDate,
		EndDate:       endDate,
		TotalDays:     requestedDays,
		Comment:       req.Comment,
		Status:        StatusPending,
	}

	if err := s.repo.WithTx(tx).Create(ctx, lr); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("create leave request success",
		zap.String("request_id", lr.ID.String()),
		zap.String("employee_id", callerID),
		zap.Int("total_days", requestedDays),
	)

	lr.LeaveType = lt
	return mapToResponse(*lr), nil
}

func (s *service) Cancel(ctx context.Context, callerID, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("cancel leave request begin tx failed", zap.Error(tx.Error))
		return LeaveRequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lr, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	// Ownership first: a non-owner learns nothing about the status.
	if lr.EmployeeID.String() != callerID {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestOwner
	}

	if !isAllowedStatusTransition(lr.Status, StatusCancelled) {
		s.logger.Warn("cancel leave request invalid transition",
			zap.String("request_id", id),
			zap.String("from_status", lr.Status),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidStatusTransition
	}

	lr.Status = StatusCancelled

	if err := qtx.Update(ctx, lr); err != nil {
		s.logger.Error("cancel leave request persist failed", zap.String("request_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("cancel leave request commit failed", zap.String("request_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("cancel leave request success", zap.String("request_id", id))
	return mapToResponse(*lr), nil
}

func (s *service) GetEmployeeLeaveRequests(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaverequesterrors.ErrInvalidEmployeeID
	}

	requests, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) AdminGetAllLeaveRequests(ctx context.Context) ([]LeaveRequestResponse, error) {
	requests, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetLeaveRequestForReview(ctx context.Context, id string) (ReviewLeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ReviewLeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewLeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return ReviewLeaveRequestResponse{}, err
	}

	resp := ReviewLeaveRequestResponse{
		LeaveRequestResponse: mapToResponse(*lr),
	}
	if lr.Employee != nil {
		resp.Employee = employee.MapToResponse(*lr.Employee)
	}
	return resp, nil
}

func (s *service) Review(ctx context.Context, reviewerID, id string, approved bool, comment string) (LeaveRequestResponse, error) {
	s.logger.Debug("review leave request",
		zap.String("request_id", id),
		zap.String("reviewer_id", reviewerID),
		zap.Bool("approved", approved),
	)

	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("review leave request begin tx failed", zap.Error(tx.Error))
		return LeaveRequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lr, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	targetStatus := StatusRejected
	if approved {
		targetStatus = StatusApproved
	}

	if !isAllowedStatusTransition(lr.Status, targetStatus) {
		s.logger.Warn("review leave request invalid transition",
			zap.String("request_id", id),
			zap.String("from_status", lr.Status),
			zap.String("to_status", targetStatus),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidStatusTransition
	}

	now := s.now().UTC()
	lr.Status = targetStatus
	lr.ReviewedBy = &reviewerUUID
	lr.ReviewedAt = &now
	if comment != "" {
		lr.ReviewComment = &comment
	}

	if err := qtx.Update(ctx, lr); err != nil {
		s.logger.Error("review leave request persist failed", zap.String("request_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if s.outbox != nil {
		if err := s.stageRequestDecided(ctx, tx, lr, reviewerID, now); err != nil {
			s.logger.Error("stage request decided event failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("review leave request commit failed", zap.String("request_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("review leave request success",
		zap.String("request_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*lr), nil
}

func (s *service) DatesExceedAllocation(ctx context.Context, employeeID string, draft DraftLeaveRequest) (bool, error) {
	startDate, err := parseDate(draft.StartDate)
	if err != nil {
		return false, err
	}
	endDate, err := parseDate(draft.EndDate)
	if err != nil {
		return false, err
	}
	if startDate.After(endDate) {
		return false, apperror.Validation(apperror.FieldError{
			Field:   "end_date",
			Message: "start_date must be before or equal to end_date",
		})
	}

	alloc, err := s.allocations.GetCurrentAllocation(ctx, draft.LeaveTypeID, employeeID)
	if err != nil {
		return false, err
	}

	p, err := s.periods.CurrentPeriod(ctx, s.now())
	if err != nil {
		return false, err
	}

	return s.exceedsRemaining(ctx, employeeID, draft.LeaveTypeID, daysInclusive(startDate, endDate), alloc.Days, p)
}

// exceedsRemaining reports whether requestedDays is more than what is left
// of the allocation after subtracting days already committed to other
// active requests in the period. Read-then-decide; concurrent submissions
// can both pass, which is accepted for this workload.
func (s *service) exceedsRemaining(
	ctx context.Context,
	employeeID, leaveTypeID string,
	requestedDays, allocationDays int,
	p period.Period,
) (bool, error) {
	committed, err := s.repo.SumActiveDays(ctx, employeeID, leaveTypeID, p.StartDate, p.EndDate, nil)
	if err != nil {
		return false, err
	}
	return requestedDays > allocationDays-committed, nil
}

func (s *service) stageRequestDecided(ctx context.Context, tx *gorm.DB, lr *LeaveRequest, reviewerID string, now time.Time) error {
	payload, err := json.Marshal(events.LeaveRequestDecidedEvent{
		EventType:   "leave_request.decided",
		RequestID:   lr.ID.String(),
		EmployeeID:  lr.EmployeeID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		Status:      lr.Status,
		ReviewedBy:  reviewerID,
		OccurredAt:  now,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafkamsg.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   lr.ID.String(),
		EventType:     "leave_request.decided",
		Topic:         events.LeaveRequestDecidedTopic,
		Payload:       payload,
		Status:        kafkamsg.OutboxStatusPending,
	})
}

// daysInclusive counts the days in [start, end], both ends included.
func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            lr.ID.String(),
		RequestNumber: lr.RequestNumber,
		EmployeeID:    lr.EmployeeID.String(),
		LeaveTypeID:   lr.LeaveTypeID.String(),
		StartDate:     lr.StartDate.Format("2006-01-02"),
		EndDate:       lr.EndDate.Format("2006-01-02"),
		TotalDays:     lr.TotalDays,
		Comment:       lr.Comment,
		Status:        lr.Status,
		CreatedAt:     lr.CreatedAt.Format(time.RFC3339),
	}
	if lr.Employee != nil {
		resp.EmployeeName = lr.Employee.FullName()
	}
	if lr.LeaveType != nil {
		resp.LeaveTypeName = lr.LeaveType.Name
	}
	resp.ReviewComment = lr.ReviewComment
	if lr.ReviewedBy != nil {
		v := lr.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if lr.ReviewedAt != nil {
		v := lr.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
	}
	return resp
}
