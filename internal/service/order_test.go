package service

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"regexp"
	"testing"
	"time"
	"flexopack/internal/storage"
)

type MockOrderStorage struct {
	mock.Mock
}

func (m *MockOrderStorage) SaveOrderWithProgress(ctx context.Context, order storage.Order, progress []storage.StageProgress) (int64, error) {
	args := m.Called(ctx, order, progress)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateOrder_SeedsProgressPerActiveStage(t *testing.T) {
	mockOrders := new(MockOrderStorage)
	mockCatalog := new(MockCatalogStorage)

	mockCatalog.On("ListActiveStages", mock.Anything, "org-1").Return(activeStages(), nil)
	mockOrders.On("SaveOrderWithProgress", mock.Anything,
		mock.MatchedBy(func(order storage.Order) bool {
			return order.Status == storage.OrderStatusDraft && order.UIORN != ""
		}),
		mock.MatchedBy(func(progress []storage.StageProgress) bool {
			if len(progress) != 3 {
				return false
			}
			for i, pr := range progress {
				if pr.Status != storage.ProgressStatusPending || pr.SequenceOrder != i+1 {
					return false
				}
			}
			return true
		}),
	).Return(int64(10), nil)

	svc := NewOrderService(mockOrders, mockCatalog)

	order, err := svc.CreateOrder(context.Background(), storage.NewOrderDetails{
		OrgID:    "org-1",
		ItemCode: "FP-100",
		Quantity: 5000,
		Priority: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), order.ID)
	mockOrders.AssertExpectations(t)
}

func TestCreateOrder_CollectsViolations(t *testing.T) {
	svc := NewOrderService(new(MockOrderStorage), new(MockCatalogStorage))

	_, err := svc.CreateOrder(context.Background(), storage.NewOrderDetails{
		OrgID:    "org-1",
		Quantity: 0,
		Priority: 9,
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 3) // нет изделия, количество, приоритет
}

func TestCreateOrder_NoActiveStages(t *testing.T) {
	mockCatalog := new(MockCatalogStorage)
	mockCatalog.On("ListActiveStages", mock.Anything, "org-1").Return([]storage.Stage{}, nil)

	svc := NewOrderService(new(MockOrderStorage), mockCatalog)

	_, err := svc.CreateOrder(context.Background(), storage.NewOrderDetails{
		OrgID:    "org-1",
		ItemCode: "FP-100",
		Quantity: 100,
		Priority: 1,
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGenerateUIORN_Format(t *testing.T) {
	now := time.Date(2026, time.September, 14, 12, 0, 0, 0, time.UTC)

	re := regexp.MustCompile(`^UIORN2609\d{4}$`)
	for i := 0; i < 20; i++ {
		uiorn := GenerateUIORN(now)
		assert.Regexp(t, re, uiorn)
	}
}
