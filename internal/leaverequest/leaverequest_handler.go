package leaverequest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyCacheTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leaverequest.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.handler")
	}
	return &Handler{service: service, logger: l}
}

// NewHandlerWithRedis enables the idempotent-submission contract: the
// handler caches the created response under the middleware's cache key and
// releases the in-flight lock when it finishes.
func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, logger...)
	h.rdb = rdb
	return h
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("leave request endpoint failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func callerID(c *gin.Context) (string, bool) {
	id := contextutil.GetEmployeeID(c.Request.Context())
	return id, id != ""
}

func (h *Handler) Create(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	var req CreateLeaveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave request validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		h.writeServiceError(c, leaverequesterrors.ErrInvalidEmployeeID)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, idempotencyCacheTTL).Err()
			}
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// GetMine lists the authenticated caller's own requests.
func (h *Handler) GetMine(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		h.writeServiceError(c, leaverequesterrors.ErrInvalidEmployeeID)
		return
	}

	resp, err := h.service.GetEmployeeLeaveRequests(c.Request.Context(), caller)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.AdminGetAllLeaveRequests(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetForReview(c *gin.Context) {
	resp, err := h.service.GetLeaveRequestForReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Review(c *gin.Context) {
	var req ReviewLeaveRequestAction
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http review leave request validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		h.writeServiceError(c, leaverequesterrors.ErrInvalidEmployeeID)
		return
	}

	resp, err := h.service.Review(c.Request.Context(), caller, c.Param("id"), *req.Approved, req.Comment)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		h.writeServiceError(c, leaverequesterrors.ErrInvalidEmployeeID)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// CheckAllocation answers the pre-submission "would this exceed my
// allocation" question without creating anything.
func (h *Handler) CheckAllocation(c *gin.Context) {
	var draft DraftLeaveRequest
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.logger.Warn("http check allocation validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	caller, ok := callerID(c)
	if !ok {
		h.writeServiceError(c, leaverequesterrors.ErrInvalidEmployeeID)
		return
	}

	exceeds, err := h.service.DatesExceedAllocation(c.Request.Context(), caller, draft)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ExceedsAllocationResponse{Exceeds: exceeds}, nil)
}
