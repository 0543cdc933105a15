package service

import (
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"math/rand"
	"testing"
	"flexopack/internal/storage"
)

type MockBOMStorage struct {
	mock.Mock
}

func (m *MockBOMStorage) GetLatestBOMVersion(ctx context.Context, orgID, itemCode string) (string, error) {
	args := m.Called(ctx, orgID, itemCode)
	return args.String(0), args.Error(1)
}

func (m *MockBOMStorage) SaveBOM(ctx context.Context, bom storage.BOM) (int64, error) {
	args := m.Called(ctx, bom)
	return args.Get(0).(int64), args.Error(1)
}

func candidate(components ...storage.CandidateComponent) storage.CandidateBOM {
	return storage.CandidateBOM{
		OrgID:      "org-1",
		ItemCode:   "FP-100",
		YieldPct:   97.5,
		Components: components,
	}
}

func comp(code string, weight float64) storage.CandidateComponent {
	return storage.CandidateComponent{MaterialCode: code, MaterialName: "Материал " + code, WeightPct: weight}
}

func TestSubmitBOM_Accepted(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	mockStorage.On("GetLatestBOMVersion", mock.Anything, "org-1", "FP-100").Return("", nil)
	mockStorage.On("SaveBOM", mock.Anything, mock.Anything).Return(int64(7), nil)

	svc := NewBOMService(mockStorage)

	bom, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 60), comp("B", 40)))

	assert.NoError(t, err)
	assert.Equal(t, int64(7), bom.ID)
	assert.Equal(t, "1.0", bom.Version)
	// Внутри хранится доля, не процент
	assert.InDelta(t, 0.6, bom.Components[0].Ratio, 1e-9)
	assert.InDelta(t, 0.4, bom.Components[1].Ratio, 1e-9)
	mockStorage.AssertExpectations(t)
}

// 60 + 39.95 = 99.95 — в пределах допуска 0.1, рецептура принимается.
func TestSubmitBOM_WithinTolerance(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	mockStorage.On("GetLatestBOMVersion", mock.Anything, "org-1", "FP-100").Return("", nil)
	mockStorage.On("SaveBOM", mock.Anything, mock.Anything).Return(int64(1), nil)

	svc := NewBOMService(mockStorage)

	bom, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 60), comp("B", 39.95)))

	assert.NoError(t, err)
	assert.NotNil(t, bom)
}

func TestSubmitBOM_SumUnder_ReportsRemaining(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	svc := NewBOMService(mockStorage)

	_, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 60), comp("B", 39.8)))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "99.80")
	assert.Contains(t, vErr.Error(), "не хватает 0.20")
	// Отказ — без обращения к базе
	mockStorage.AssertNotCalled(t, "SaveBOM", mock.Anything, mock.Anything)
}

func TestSubmitBOM_SumOver_ReportsExcess(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	svc := NewBOMService(mockStorage)

	_, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 60), comp("B", 40.5)))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "100.50")
	assert.Contains(t, vErr.Error(), "превышение на 0.50")
}

// Дубликат материала — отказ, даже если сумма сходится к 100.
func TestSubmitBOM_DuplicateMaterial(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	svc := NewBOMService(mockStorage)

	_, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 50), comp("A", 50)))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "более одного раза")
}

func TestSubmitBOM_Empty(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	svc := NewBOMService(mockStorage)

	_, err := svc.SubmitBOM(context.Background(), candidate())

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "хотя бы один компонент")
}

// Все нарушения приходят одним списком, без досрочного выхода.
func TestSubmitBOM_CollectsAllViolations(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	svc := NewBOMService(mockStorage)

	_, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 0), comp("A", 150)))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 4) // две доли вне (0,100], сумма, дубликат
}

func TestSubmitBOM_ViolationOrder(t *testing.T) {
	mockStorage := new(MockBOMStorage)
	svc := NewBOMService(mockStorage)

	_, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 150), comp("A", 30)))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	if assert.Len(t, vErr.Violations, 3) {
		// Сначала диапазоны, затем сумма, дубликаты в конце
		assert.Contains(t, vErr.Violations[0], "в пределах (0, 100]")
		assert.Contains(t, vErr.Violations[1], "превышение")
		assert.Contains(t, vErr.Violations[2], "более одного раза")
	}
}

func TestSubmitBOM_VersionMonotonic(t *testing.T) {
	cases := []struct {
		prev string
		want string
	}{
		{"", "1.0"},
		{"1.0", "1.1"},
		{"1.1", "1.2"},
		{"1.9", "2.0"},
	}

	for _, tc := range cases {
		mockStorage := new(MockBOMStorage)
		mockStorage.On("GetLatestBOMVersion", mock.Anything, "org-1", "FP-100").Return(tc.prev, nil)
		mockStorage.On("SaveBOM", mock.Anything, mock.MatchedBy(func(bom storage.BOM) bool {
			return bom.Version == tc.want
		})).Return(int64(1), nil)

		svc := NewBOMService(mockStorage)

		bom, err := svc.SubmitBOM(context.Background(), candidate(comp("A", 100)))

		assert.NoError(t, err)
		assert.Equal(t, tc.want, bom.Version, "после версии %q", tc.prev)
		mockStorage.AssertExpectations(t)
	}
}

// Случайные разбиения 100% на 1..10 компонентов всегда проходят,
// а сдвиг одной доли за допуск всегда режется.
func TestSubmitBOM_RandomPartitions(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		n := 1 + rnd.Intn(10)

		// Целочисленное разбиение, чтобы сумма была ровно 100
		parts := make([]int, n)
		left := 100 - n // каждому минимум 1
		for j := 0; j < n-1; j++ {
			take := rnd.Intn(left + 1)
			parts[j] = 1 + take
			left -= take
		}
		parts[n-1] = 1 + left

		components := make([]storage.CandidateComponent, n)
		for j, p := range parts {
			components[j] = comp(fmt.Sprintf("M%d", j), float64(p))
		}

		mockStorage := new(MockBOMStorage)
		mockStorage.On("GetLatestBOMVersion", mock.Anything, mock.Anything, mock.Anything).Return("", nil)
		mockStorage.On("SaveBOM", mock.Anything, mock.Anything).Return(int64(1), nil)
		svc := NewBOMService(mockStorage)

		_, err := svc.SubmitBOM(context.Background(), candidate(components...))
		assert.NoError(t, err, "разбиение %v должно проходить", parts)

		// Портим одну долю сильнее допуска
		shifted := make([]storage.CandidateComponent, n)
		copy(shifted, components)
		shifted[0].WeightPct += 0.2

		_, err = svc.SubmitBOM(context.Background(), candidate(shifted...))
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, "сдвинутое разбиение %v должно резаться", parts)
	}
}

func TestNextBOMVersion_FloatDrift(t *testing.T) {
	// Десять прибавок по 0.1 не должны разъезжаться из-за float
	v := ""
	for i := 0; i < 10; i++ {
		v = NextBOMVersion(v)
	}
	assert.Equal(t, "1.9", v)
}
