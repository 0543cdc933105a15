package update

import (
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flexopack/internal/service"
	"flexopack/internal/storage"
)

type MockWorkflowControl struct {
	mock.Mock
}

func (m *MockWorkflowControl) StartStage(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error) {
	args := m.Called(ctx, orderID, stageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StageProgress), args.Error(1)
}

func (m *MockWorkflowControl) CompleteStage(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error) {
	args := m.Called(ctx, orderID, stageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StageProgress), args.Error(1)
}

func (m *MockWorkflowControl) HoldStage(ctx context.Context, orderID, stageID int64, reason string) error {
	args := m.Called(ctx, orderID, stageID, reason)
	return args.Error(0)
}

func (m *MockWorkflowControl) ResumeStage(ctx context.Context, orderID, stageID int64) error {
	args := m.Called(ctx, orderID, stageID)
	return args.Error(0)
}

func (m *MockWorkflowControl) CancelStage(ctx context.Context, orderID, stageID int64, reason string) error {
	args := m.Called(ctx, orderID, stageID, reason)
	return args.Error(0)
}

func (m *MockWorkflowControl) SetStagePercent(ctx context.Context, orderID, stageID int64, percent float64) error {
	args := m.Called(ctx, orderID, stageID, percent)
	return args.Error(0)
}

func newProgressRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/progress/10/2", strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", "10")
	rctx.URLParams.Add("stageId", "2")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateStageProgress_Start(t *testing.T) {
	mockWf := new(MockWorkflowControl)
	mockWf.On("StartStage", mock.Anything, int64(10), int64(2)).
		Return(&storage.StageProgress{Status: storage.ProgressStatusInProgress}, nil)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := UpdateStageProgress(log, mockWf)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newProgressRequest(`{"action":"start"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	mockWf.AssertExpectations(t)
}

// Блокировка качеством: 409 и тип контрольной точки в ответе.
func TestUpdateStageProgress_QualityRequired(t *testing.T) {
	mockWf := new(MockWorkflowControl)
	mockWf.On("StartStage", mock.Anything, int64(10), int64(2)).
		Return(nil, &service.QualityCheckpointRequired{OrderID: 10, StageID: 2, CheckType: storage.CheckTypePreStage})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := UpdateStageProgress(log, mockWf)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newProgressRequest(`{"action":"start"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)

	var resp Response
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, storage.CheckTypePreStage, resp.CheckType)
}

func TestUpdateStageProgress_InvalidTransition(t *testing.T) {
	mockWf := new(MockWorkflowControl)
	mockWf.On("CancelStage", mock.Anything, int64(10), int64(2), "").
		Return(&service.InvalidTransition{From: "in_progress", To: "cancelled"})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := UpdateStageProgress(log, mockWf)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newProgressRequest(`{"action":"cancel"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUpdateStageProgress_UnknownAction(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := UpdateStageProgress(log, new(MockWorkflowControl))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newProgressRequest(`{"action":"restart"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateStageProgress_SetPercent(t *testing.T) {
	mockWf := new(MockWorkflowControl)
	mockWf.On("SetStagePercent", mock.Anything, int64(10), int64(2), 55.0).Return(nil)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := UpdateStageProgress(log, mockWf)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newProgressRequest(`{"action":"set_percent","percent":55}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	mockWf.AssertExpectations(t)
}
