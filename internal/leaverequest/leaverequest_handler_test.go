package leaverequest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-leave/internal/leaverequest"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	createFn  func(ctx context.Context, callerID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error)
	cancelFn  func(ctx context.Context, callerID, id string) (leaverequest.LeaveRequestResponse, error)
	reviewFn  func(ctx context.Context, reviewerID, id string, approved bool, comment string) (leaverequest.LeaveRequestResponse, error)
	exceedsFn func(ctx context.Context, employeeID string, draft leaverequest.DraftLeaveRequest) (bool, error)
	listAll   []leaverequest.LeaveRequestResponse
}

func (f *fakeService) Create(ctx context.Context, callerID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
	return f.createFn(ctx, callerID, req)
}

func (f *fakeService) Cancel(ctx context.Context, callerID, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.cancelFn(ctx, callerID, id)
}

func (f *fakeService) GetEmployeeLeaveRequests(ctx context.Context, employeeID string) ([]leaverequest.LeaveRequestResponse, error) {
	return nil, nil
}

func (f *fakeService) AdminGetAllLeaveRequests(ctx context.Context) ([]leaverequest.LeaveRequestResponse, error) {
	return f.listAll, nil
}

func (f *fakeService) GetLeaveRequestForReview(ctx context.Context, id string) (leaverequest.ReviewLeaveRequestResponse, error) {
	return leaverequest.ReviewLeaveRequestResponse{}, nil
}

func (f *fakeService) Review(ctx context.Context, reviewerID, id string, approved bool, comment string) (leaverequest.LeaveRequestResponse, error) {
	return f.reviewFn(ctx, reviewerID, id, approved, comment)
}

func (f *fakeService) DatesExceedAllocation(ctx context.Context, employeeID string, draft leaverequest.DraftLeaveRequest) (bool, error) {
	return f.exceedsFn(ctx, employeeID, draft)
}

func authedRequest(method, target, body, employeeID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := contextutil.WithEmployeeID(req.Context(), employeeID)
	return req.WithContext(ctx)
}

func TestHandler_CreateReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()
	typeID := uuid.New().String()

	svc := &fakeService{
		createFn: func(ctx context.Context, callerID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
			assert.Equal(t, employeeID, callerID)
			assert.Equal(t, typeID, req.LeaveTypeID)
			return leaverequest.LeaveRequestResponse{
				ID:        uuid.New().String(),
				Status:    leaverequest.StatusPending,
				TotalDays: 3,
			}, nil
		},
	}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(http.MethodPost, "/leave-requests",
		`{"leave_type_id":"`+typeID+`","start_date":"2026-09-07","end_date":"2026-09-09"}`,
		employeeID,
	)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Ok)
	assert.Nil(t, envelope.Error)
}

func TestHandler_CreateValidationFailureListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	svc := &fakeService{
		createFn: func(ctx context.Context, callerID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
			return leaverequest.LeaveRequestResponse{}, apperror.Validation(
				apperror.FieldError{Field: "end_date", Message: "you have exceeded your allocation"},
				apperror.FieldError{Field: "number_of_days", Message: "at least 10 days required"},
			)
		},
	}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(http.MethodPost, "/leave-requests",
		`{"leave_type_id":"`+uuid.New().String()+`","start_date":"2026-09-07","end_date":"2026-09-09"}`,
		employeeID,
	)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end_date")
	assert.Contains(t, w.Body.String(), "number_of_days")
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_CreateMalformedBodyIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	called := false
	svc := &fakeService{
		createFn: func(ctx context.Context, callerID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
			called = true
			return leaverequest.LeaveRequestResponse{}, nil
		},
	}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(http.MethodPost, "/leave-requests",
		`{"leave_type_id":"not-a-uuid"}`,
		uuid.New().String(),
	)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestHandler_ReviewPassesDecision(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reviewerID := uuid.New().String()
	requestID := uuid.New().String()

	svc := &fakeService{
		reviewFn: func(ctx context.Context, rid, id string, approved bool, comment string) (leaverequest.LeaveRequestResponse, error) {
			assert.Equal(t, reviewerID, rid)
			assert.Equal(t, requestID, id)
			assert.False(t, approved)
			assert.Equal(t, "dates clash with the release", comment)
			return leaverequest.LeaveRequestResponse{ID: id, Status: leaverequest.StatusRejected}, nil
		},
	}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: requestID}}
	c.Request = authedRequest(http.MethodPost, "/leave-requests/"+requestID+"/review",
		`{"approved":false,"comment":"dates clash with the release"}`,
		reviewerID,
	)
	h.Review(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), leaverequest.StatusRejected)
}

func TestHandler_CheckAllocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	svc := &fakeService{
		exceedsFn: func(ctx context.Context, eid string, draft leaverequest.DraftLeaveRequest) (bool, error) {
			assert.Equal(t, employeeID, eid)
			return true, nil
		},
	}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(http.MethodPost, "/leave-requests/check",
		`{"leave_type_id":"`+uuid.New().String()+`","start_date":"2026-09-07","end_date":"2026-09-30"}`,
		employeeID,
	)
	h.CheckAllocation(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exceeds":true`)
}

func TestHandler_CancelWithoutIdentityIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		cancelFn: func(ctx context.Context, callerID, id string) (leaverequest.LeaveRequestResponse, error) {
			t.Fatal("service must not be reached without a caller identity")
			return leaverequest.LeaveRequestResponse{}, nil
		},
	}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/cancel", nil)
	h.Cancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// A retried submission carrying the same Idempotency-Key must replay the
// first response instead of filing a second request: the handler fills the
// cache and frees the in-flight lock once it finishes.
func TestHandler_CreateRetrySameKeyFilesOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()
	typeID := uuid.New().String()

	rdb, rmock := redismock.NewClientMock()

	created := leaverequest.LeaveRequestResponse{
		ID:        uuid.New().String(),
		Status:    leaverequest.StatusPending,
		TotalDays: 3,
	}
	var serviceCalls int
	svc := &fakeService{
		createFn: func(ctx context.Context, callerID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
			serviceCalls++
			return created, nil
		},
	}
	h := leaverequest.NewHandlerWithRedis(svc, rdb)

	router := gin.New()
	router.POST("/leave-requests", func(c *gin.Context) {
		c.Set("employee_id", employeeID)
		ctx := contextutil.WithEmployeeID(c.Request.Context(), employeeID)
		c.Request = c.Request.WithContext(ctx)
	}, middleware.Idempotency(rdb), h.Create)

	cacheKey := "idemp:/leave-requests:" + employeeID + ":req-42"
	lockKey := cacheKey + ":lock"
	payload, err := json.Marshal(created)
	assert.NoError(t, err)

	// First attempt: nothing cached, lock acquired, response cached, lock
	// released.
	rmock.ExpectGet(cacheKey).RedisNil()
	rmock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	rmock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
	rmock.ExpectDel(lockKey).SetVal(1)

	body := `{"leave_type_id":"` + typeID + `","start_date":"2026-09-07","end_date":"2026-09-09"}`
	req1 := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
	req1.Header.Set("Content-Type", "application/json")
	req1.Header.Set("Idempotency-Key", "req-42")
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req1)

	assert.Equal(t, http.StatusCreated, w1.Code)
	assert.Equal(t, 1, serviceCalls)

	// Retry: the cached response comes back and the engine is not touched.
	rmock.ExpectGet(cacheKey).SetVal(string(payload))

	req2 := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("Idempotency-Key", "req-42")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, serviceCalls)
	assert.Contains(t, w2.Body.String(), created.ID)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestHandler_GetAllPaginatesWithMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{listAll: []leaverequest.LeaveRequestResponse{
		{ID: uuid.New().String()},
		{ID: uuid.New().String()},
		{ID: uuid.New().String()},
	}}
	h := leaverequest.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(http.MethodGet, "/leave-requests/all?page=2&page_size=2", "", uuid.New().String())
	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Ok   bool                                `json:"ok"`
		Data []leaverequest.LeaveRequestResponse `json:"data"`
		Meta response.PaginationMeta             `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Ok)
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, int64(3), envelope.Meta.Total)
	assert.Equal(t, 2, envelope.Meta.TotalPages)
	assert.Equal(t, 2, envelope.Meta.Page)
}
