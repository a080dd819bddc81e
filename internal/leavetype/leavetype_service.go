package leavetype

import (
	"context"
	"errors"

	leavetypeerrors "go-leave/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	// ListAll returns catalog entities for internal consumers (the engines
	// need ids and defaults, not the wire shape).
	ListAll(ctx context.Context) ([]LeaveType, error)
	GetByID(ctx context.Context, id string) (*LeaveType, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(types), nil
}

func (s *service) ListAll(ctx context.Context) ([]LeaveType, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id string) (*LeaveType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return nil, err
	}
	return lt, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	if req.DefaultDays < 0 {
		return LeaveTypeResponse{}, leavetypeerrors.ErrNegativeDefaultDays
	}

	lt := &LeaveType{
		ID:          uuid.New(),
		Name:        req.Name,
		DefaultDays: req.DefaultDays,
	}

	if err := s.repo.Create(ctx, lt); err != nil {
		if isUniqueViolation(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrDuplicateName
		}
		s.logger.Error("create leave type failed", zap.String("name", req.Name), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.logger.Info("leave type created", zap.String("leave_type_id", lt.ID.String()), zap.String("name", lt.Name))
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	lt, err := s.GetByID(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	if req.DefaultDays < 0 {
		return LeaveTypeResponse{}, leavetypeerrors.ErrNegativeDefaultDays
	}

	lt.Name = req.Name
	lt.DefaultDays = req.DefaultDays

	if err := s.repo.Update(ctx, lt); err != nil {
		if isUniqueViolation(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrDuplicateName
		}
		return LeaveTypeResponse{}, err
	}

	return mapToResponse(*lt), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:          lt.ID.String(),
		Name:        lt.Name,
		DefaultDays: lt.DefaultDays,
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp
}
