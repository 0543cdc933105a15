package service

import (
	"context"
	"fmt"
	"time"
	"flexopack/internal/storage"
)

type OrderStorage interface {
	SaveOrderWithProgress(ctx context.Context, order storage.Order, progress []storage.StageProgress) (int64, error)
}

// OrderService создаёт заказ и снимок маршрута: по одной записи прогресса
// на каждый активный этап, все в pending, одной транзакцией.
type OrderService struct {
	storage OrderStorage
	stages  CatalogStorage
}

func NewOrderService(storage OrderStorage, stages CatalogStorage) *OrderService {
	return &OrderService{storage: storage, stages: stages}
}

func (s *OrderService) CreateOrder(ctx context.Context, req storage.NewOrderDetails) (*storage.Order, error) {
	const op = "service.order.CreateOrder"

	var violations []string
	if req.OrgID == "" {
		violations = append(violations, "организация обязательна")
	}
	if req.ItemCode == "" {
		violations = append(violations, "код изделия обязателен")
	}
	if req.Quantity <= 0 {
		violations = append(violations, "количество должно быть больше нуля")
	}
	if req.Priority < 1 || req.Priority > 4 {
		violations = append(violations, "приоритет должен быть от 1 до 4")
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	stages, err := s.stages.ListActiveStages(ctx, req.OrgID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(stages) == 0 {
		return nil, &ValidationError{Violations: []string{"у организации нет активных этапов маршрута"}}
	}

	order := storage.Order{
		OrgID:        req.OrgID,
		UIORN:        GenerateUIORN(time.Now()),
		ItemCode:     req.ItemCode,
		Quantity:     req.Quantity,
		DeliveryDate: req.DeliveryDate,
		Priority:     req.Priority,
		Status:       storage.OrderStatusDraft,
	}

	// Этапы приходят уже в порядке маршрута
	progress := make([]storage.StageProgress, 0, len(stages))
	for _, st := range stages {
		progress = append(progress, storage.StageProgress{
			StageID:       st.ID,
			StageName:     st.Name,
			StageType:     st.StageType,
			SequenceOrder: st.SequenceOrder,
			Status:        storage.ProgressStatusPending,
			Percent:       0,
			QualityStatus: storage.CheckResultPending,
		})
	}

	id, err := s.storage.SaveOrderWithProgress(ctx, order, progress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.ID = id
	return &order, nil
}
