package employee

import (
	"context"
	"errors"

	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	// GetCurrentCaller resolves the authenticated caller from the request
	// context as set by the auth middleware.
	GetCurrentCaller(ctx context.Context) (*Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetCurrentCaller(ctx context.Context) (*Employee, error) {
	callerID := contextutil.GetEmployeeID(ctx)
	if callerID == "" {
		return nil, employeeerrors.ErrNoCallerIdentity
	}
	return s.GetEmployeeByID(ctx, callerID)
}

func (s *service) GetEmployeeByID(ctx context.Context, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("find employee failed", zap.String("employee_id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

func (s *service) ListEmployees(ctx context.Context) ([]Employee, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list employees failed", zap.Error(err))
		return nil, err
	}
	return employees, nil
}

func MapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID.String(),
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Email:       e.Email,
		DateOfBirth: e.DateOfBirth.Format("2006-01-02"),
	}
}

func MapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = MapToResponse(e)
	}
	return resp
}
