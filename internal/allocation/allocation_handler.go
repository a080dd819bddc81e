package allocation

import (
	"net/http"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("allocation.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("allocation.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("allocation request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Allocate runs the bulk allocation for one employee.
func (h *Handler) Allocate(c *gin.Context) {
	employeeID := c.Param("employeeId")

	if err := h.service.AllocateLeave(c.Request.Context(), employeeID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetEmployeeAllocations(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetForEmployee(c *gin.Context) {
	resp, err := h.service.GetEmployeeAllocations(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// GetMine returns the authenticated caller's allocation summary.
func (h *Handler) GetMine(c *gin.Context) {
	resp, err := h.service.GetEmployeeAllocations(c.Request.Context(), "")
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// GetMineForType returns the caller's allocation for one category, the shape
// the request form uses to display the remaining balance context.
func (h *Handler) GetMineForType(c *gin.Context) {
	a, err := h.service.GetLoggedInUserAllocation(c.Request.Context(), c.Param("leaveTypeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := AllocationResponse{
		ID:          a.ID.String(),
		EmployeeID:  a.EmployeeID.String(),
		LeaveTypeID: a.LeaveTypeID.String(),
		PeriodID:    a.PeriodID.String(),
		Days:        a.Days,
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetAllocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Edit(c *gin.Context) {
	var req EditAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http edit allocation validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	id := c.Param("id")
	if err := h.service.EditAllocation(c.Request.Context(), id, req.Days); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetAllocation(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListEmployees(c *gin.Context) {
	resp, err := h.service.ListEmployees(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
