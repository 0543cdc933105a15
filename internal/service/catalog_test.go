package service

import (
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"testing"
	"flexopack/internal/storage"
)

type MockCatalogStorage struct {
	mock.Mock
}

func (m *MockCatalogStorage) ListActiveStages(ctx context.Context, orgID string) ([]storage.Stage, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Stage), args.Error(1)
}

func (m *MockCatalogStorage) SaveStage(ctx context.Context, st storage.Stage) (int64, error) {
	args := m.Called(ctx, st)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogStorage) UpdateStageSequence(ctx context.Context, stageID int64, sequenceOrder int) error {
	args := m.Called(ctx, stageID, sequenceOrder)
	return args.Error(0)
}

func (m *MockCatalogStorage) UpdateStageActive(ctx context.Context, stageID int64, active bool) error {
	args := m.Called(ctx, stageID, active)
	return args.Error(0)
}

func activeStages() []storage.Stage {
	return []storage.Stage{
		{ID: 1, OrgID: "org-1", Name: "Высечка", StageType: "punching", SequenceOrder: 1, IsActive: true},
		{ID: 2, OrgID: "org-1", Name: "Печать", StageType: "printing", SequenceOrder: 2, IsActive: true},
		{ID: 3, OrgID: "org-1", Name: "Ламинация", StageType: "lamination", SequenceOrder: 3, IsActive: true},
	}
}

func TestCreateStage_Success(t *testing.T) {
	mockStorage := new(MockCatalogStorage)
	mockStorage.On("ListActiveStages", mock.Anything, "org-1").Return(activeStages(), nil)
	mockStorage.On("SaveStage", mock.Anything, mock.MatchedBy(func(st storage.Stage) bool {
		return st.StageType == "coating" && st.SequenceOrder == 4 && st.IsActive
	})).Return(int64(9), nil)

	svc := NewCatalogService(mockStorage)

	stage, err := svc.CreateStage(context.Background(), "org-1", "Лакировка", "coating", 4)

	assert.NoError(t, err)
	assert.Equal(t, int64(9), stage.ID)
	// Категории материалов подставляются по типу этапа
	assert.Equal(t, []string{"coating", "solvent"}, stage.MaterialCategories)
	mockStorage.AssertExpectations(t)
}

// Занятые номера {1,2,3}: новый этап с номером 2 режется, а не пересортировывается.
func TestCreateStage_DuplicateSequence(t *testing.T) {
	mockStorage := new(MockCatalogStorage)
	mockStorage.On("ListActiveStages", mock.Anything, "org-1").Return(activeStages(), nil)

	svc := NewCatalogService(mockStorage)

	_, err := svc.CreateStage(context.Background(), "org-1", "Повторная печать", "printing", 2)

	var dErr *DuplicateSequenceError
	assert.ErrorAs(t, err, &dErr)
	assert.Equal(t, 2, dErr.SequenceOrder)
	mockStorage.AssertNotCalled(t, "SaveStage", mock.Anything, mock.Anything)
}

// Два создателя с одним номером: предварительную проверку оба прошли,
// уникальный ключ базы отдаёт второму тот же DuplicateSequenceError.
func TestCreateStage_DuplicateSequenceRace(t *testing.T) {
	mockStorage := new(MockCatalogStorage)
	mockStorage.On("ListActiveStages", mock.Anything, "org-1").Return(activeStages(), nil)
	mockStorage.On("SaveStage", mock.Anything, mock.Anything).
		Return(int64(0), fmt.Errorf("storage.mysql.SaveStage: этап с порядковым номером 4: %w", storage.ErrDuplicateSequence))

	svc := NewCatalogService(mockStorage)

	_, err := svc.CreateStage(context.Background(), "org-1", "Лакировка", "coating", 4)

	var dErr *DuplicateSequenceError
	assert.ErrorAs(t, err, &dErr)
	assert.Equal(t, 4, dErr.SequenceOrder)
}

func TestCreateStage_UnknownType(t *testing.T) {
	mockStorage := new(MockCatalogStorage)

	svc := NewCatalogService(mockStorage)

	_, err := svc.CreateStage(context.Background(), "org-1", "Сушка", "drying", 5)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "drying")
	mockStorage.AssertNotCalled(t, "ListActiveStages", mock.Anything, mock.Anything)
}

// Номер меньше 1 прижимается к 1, соседи не сдвигаются.
func TestReorderStage_Clamps(t *testing.T) {
	mockStorage := new(MockCatalogStorage)
	mockStorage.On("UpdateStageSequence", mock.Anything, int64(2), 1).Return(nil)

	svc := NewCatalogService(mockStorage)

	assert.NoError(t, svc.ReorderStage(context.Background(), 2, -5))
	mockStorage.AssertCalled(t, "UpdateStageSequence", mock.Anything, int64(2), 1)
}

func TestSetStageActive(t *testing.T) {
	mockStorage := new(MockCatalogStorage)
	mockStorage.On("UpdateStageActive", mock.Anything, int64(3), false).Return(nil)

	svc := NewCatalogService(mockStorage)

	assert.NoError(t, svc.SetStageActive(context.Background(), 3, false))
	mockStorage.AssertExpectations(t)
}
