package service

import (
	"context"
	"fmt"
	"golang.org/x/sync/errgroup"
	"flexopack/internal/storage"
)

// Этап считается фактически завершённым, когда его процент дошёл до 100
// с поправкой на накопленную ошибку float-арифметики.
const completeTolerance = 0.01

type ProgressionStorage interface {
	GetOrder(ctx context.Context, orderID int64) (*storage.Order, error)
	ListOrderProgress(ctx context.Context, orderID int64) ([]storage.StageProgress, error)
	MarkOrderCompleted(ctx context.Context, orderID int64) error
}

// ProgressionService решает, какой этап заказа следующий,
// и считает совокупный процент готовности.
type ProgressionService struct {
	storage  ProgressionStorage
	workflow *WorkflowService
}

func NewProgressionService(storage ProgressionStorage, workflow *WorkflowService) *ProgressionService {
	return &ProgressionService{storage: storage, workflow: workflow}
}

// CurrentStage — первый этап в работе по порядку маршрута,
// иначе первый ожидающий, иначе nil: заказ прошёл весь маршрут.
func CurrentStage(progress []storage.StageProgress) *storage.StageProgress {
	for i := range progress {
		if progress[i].Status == storage.ProgressStatusInProgress {
			return &progress[i]
		}
	}
	for i := range progress {
		if progress[i].Status == storage.ProgressStatusPending {
			return &progress[i]
		}
	}
	return nil
}

// OverallPercent — завершённые этапы дают полную долю, работающий —
// дробную по своему проценту. Монотонно не убывает, пока не убывают
// проценты самих этапов.
func OverallPercent(progress []storage.StageProgress) float64 {
	total := len(progress)
	if total == 0 {
		return 0
	}

	var pct float64
	for _, pr := range progress {
		switch pr.Status {
		case storage.ProgressStatusCompleted:
			pct += 100.0 / float64(total)
		case storage.ProgressStatusInProgress:
			pct += pr.Percent / float64(total)
		}
	}

	if pct > 100 {
		pct = 100
	}
	return pct
}

// OrderSummary — заказ, прогресс по этапам и совокупный процент одним ответом.
func (s *ProgressionService) OrderSummary(ctx context.Context, orderID int64) (*storage.OrderSummary, error) {
	const op = "service.progression.OrderSummary"

	order, progress, err := s.loadOrderState(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := &storage.OrderSummary{
		Order:          *order,
		Progress:       progress,
		OverallPercent: OverallPercent(progress),
	}
	if cur := CurrentStage(progress); cur != nil {
		summary.CurrentStage = cur.StageName
	}

	return summary, nil
}

// AdvanceToNextStage продвигает заказ на один шаг: запускает ожидающий
// текущий этап либо завершает доработанный до конца. Возвращает имя этапа,
// получившего продвижение; если этапов не осталось — NoEligibleStage,
// а заказ помечается завершённым.
func (s *ProgressionService) AdvanceToNextStage(ctx context.Context, orderID int64) (string, error) {
	const op = "service.progression.AdvanceToNextStage"

	order, progress, err := s.loadOrderState(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	cur := CurrentStage(progress)
	if cur == nil {
		if order.Status == storage.OrderStatusInProduction {
			if err := s.storage.MarkOrderCompleted(ctx, orderID); err != nil {
				return "", fmt.Errorf("%s: %w", op, err)
			}
		}
		return "", &NoEligibleStage{OrderID: orderID}
	}

	switch cur.Status {
	case storage.ProgressStatusPending:
		if _, err := s.workflow.StartStage(ctx, orderID, cur.StageID); err != nil {
			return "", err
		}
	case storage.ProgressStatusInProgress:
		if cur.Percent >= 100-completeTolerance {
			if _, err := s.workflow.CompleteStage(ctx, orderID, cur.StageID); err != nil {
				return "", err
			}
		}
		// Этап ещё в работе — продвигать нечего, отдаём его имя как текущий
	}

	return cur.StageName, nil
}

// loadOrderState читает заказ и прогресс параллельно: обе выборки
// независимы, смысла ждать их по очереди нет.
func (s *ProgressionService) loadOrderState(ctx context.Context, orderID int64) (*storage.Order, []storage.StageProgress, error) {
	var (
		order    *storage.Order
		progress []storage.StageProgress
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = s.storage.GetOrder(gCtx, orderID)
		if err != nil {
			return fmt.Errorf("order: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		progress, err = s.storage.ListOrderProgress(gCtx, orderID)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return order, progress, nil
}
