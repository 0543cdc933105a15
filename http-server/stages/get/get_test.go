package get

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"flexopack/internal/storage"
)

// MockStageCatalog реализует интерфейс StageCatalog для тестов
type MockStageCatalog struct {
	mock.Mock
}

func (m *MockStageCatalog) ListActiveStages(ctx context.Context, orgID string) ([]storage.Stage, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Stage), args.Error(1)
}

func TestGetActiveStages_Success(t *testing.T) {
	mockCatalog := new(MockStageCatalog)

	stages := []storage.Stage{
		{ID: 1, OrgID: "org-1", Name: "Высечка", StageType: "punching", SequenceOrder: 1, IsActive: true},
		{ID: 2, OrgID: "org-1", Name: "Печать", StageType: "printing", SequenceOrder: 2, IsActive: true},
	}
	mockCatalog.On("ListActiveStages", mock.Anything, "org-1").Return(stages, nil)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := GetActiveStages(log, mockCatalog)

	req := httptest.NewRequest(http.MethodGet, "/api/stages?org=org-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []storage.Stage
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "printing", got[1].StageType)
	mockCatalog.AssertExpectations(t)
}

func TestGetActiveStages_MissingOrg(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := GetActiveStages(log, new(MockStageCatalog))

	req := httptest.NewRequest(http.MethodGet, "/api/stages", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetActiveStages_StorageError(t *testing.T) {
	mockCatalog := new(MockStageCatalog)
	mockCatalog.On("ListActiveStages", mock.Anything, "org-1").Return(nil, errors.New("db down"))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := GetActiveStages(log, mockCatalog)

	req := httptest.NewRequest(http.MethodGet, "/api/stages?org=org-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
