package service

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"log/slog"
	"time"
	"flexopack/internal/storage"
)

type WorkflowStorage interface {
	GetProgress(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error)
	TransitionProgress(ctx context.Context, orderID, stageID int64, from string, upd storage.ProgressUpdate) (bool, error)
	UpdateProgressPercent(ctx context.Context, orderID, stageID int64, percent float64) (bool, error)
	MarkOrderInProduction(ctx context.Context, orderID int64) error
}

type QualityStorage interface {
	HasBlockingPrecheck(ctx context.Context, orderID, stageID int64) (bool, error)
	SaveCheckpoint(ctx context.Context, cp storage.QualityCheckpoint) (int64, error)
}

// StockChecker — смежный модуль выдачи материалов. Его ошибка
// (*InsufficientStock) уходит вызывающему без изменений.
type StockChecker interface {
	CheckStageMaterials(ctx context.Context, orderID, stageID int64) error
}

// Таблица допустимых переходов. Всё, чего здесь нет, — InvalidTransition.
// completed и cancelled — терминальные.
var allowedTransitions = map[string]map[string]bool{
	storage.ProgressStatusPending: {
		storage.ProgressStatusInProgress: true,
		storage.ProgressStatusCancelled:  true,
	},
	storage.ProgressStatusInProgress: {
		storage.ProgressStatusCompleted: true,
		storage.ProgressStatusOnHold:    true,
	},
	storage.ProgressStatusOnHold: {
		storage.ProgressStatusInProgress: true,
		storage.ProgressStatusCancelled:  true,
	},
}

// WorkflowService — машина состояний прогресса (заказ x этап).
type WorkflowService struct {
	log     *slog.Logger
	storage WorkflowStorage
	quality QualityStorage
	stock   StockChecker // nil, если склад не подключён
}

func NewWorkflowService(log *slog.Logger, storage WorkflowStorage, quality QualityStorage, stock StockChecker) *WorkflowService {
	return &WorkflowService{log: log, storage: storage, quality: quality, stock: stock}
}

// StartStage — переход pending -> in_progress, под входным контролем качества.
func (s *WorkflowService) StartStage(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error) {
	const op = "service.workflow.StartStage"

	prog, err := s.storage.GetProgress(ctx, orderID, stageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if prog.Status != storage.ProgressStatusPending {
		return nil, &InvalidTransition{From: prog.Status, To: storage.ProgressStatusInProgress}
	}

	blocking, err := s.quality.HasBlockingPrecheck(ctx, orderID, stageID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка проверки входного контроля: %w", op, err)
	}
	if blocking {
		return nil, &QualityCheckpointRequired{OrderID: orderID, StageID: stageID, CheckType: storage.CheckTypePreStage}
	}

	if s.stock != nil {
		if err := s.stock.CheckStageMaterials(ctx, orderID, stageID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	upd := storage.ProgressUpdate{
		Status:    storage.ProgressStatusInProgress,
		StartedAt: &now,
	}

	ok, err := s.storage.TransitionProgress(ctx, orderID, stageID, storage.ProgressStatusPending, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, s.concurrentTransition(ctx, orderID, stageID, storage.ProgressStatusInProgress)
	}

	// Этап уже переведён. Если сменить статус заказа не вышло,
	// не проваливаем запуск: условный UPDATE по заказу идемпотентен
	// и сработает при следующем старте.
	if err := s.storage.MarkOrderInProduction(ctx, orderID); err != nil {
		s.log.Error("не удалось перевести заказ в производство",
			slog.Int64("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	prog.Status = storage.ProgressStatusInProgress
	if prog.StartedAt == nil {
		prog.StartedAt = &now
	}
	return prog, nil
}

// CompleteStage — переход in_progress -> completed. Прогресс становится 100,
// ставится completed_at и создаётся ровно одна точка выходного контроля.
// Сам факт завершения от результата этого контроля не зависит — это
// зафиксированное поведение, контроль только регистрируется для ОТК.
func (s *WorkflowService) CompleteStage(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error) {
	const op = "service.workflow.CompleteStage"

	prog, err := s.storage.GetProgress(ctx, orderID, stageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !allowedTransitions[prog.Status][storage.ProgressStatusCompleted] {
		return nil, &InvalidTransition{From: prog.Status, To: storage.ProgressStatusCompleted}
	}

	now := time.Now()
	hundred := 100.0
	upd := storage.ProgressUpdate{
		Status:      storage.ProgressStatusCompleted,
		Percent:     &hundred,
		CompletedAt: &now,
	}

	ok, err := s.storage.TransitionProgress(ctx, orderID, stageID, storage.ProgressStatusInProgress, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, s.concurrentTransition(ctx, orderID, stageID, storage.ProgressStatusCompleted)
	}

	// Сюда доходит только победитель условного UPDATE, поэтому
	// выходной контроль создаётся один раз даже при гонке.
	cp := storage.QualityCheckpoint{
		RefCode:   uuid.NewString(),
		OrderID:   orderID,
		StageID:   stageID,
		CheckType: storage.CheckTypePostStage,
		Result:    storage.CheckResultPending,
	}
	if _, err := s.quality.SaveCheckpoint(ctx, cp); err != nil {
		return nil, fmt.Errorf("%s: ошибка создания выходного контроля: %w", op, err)
	}

	prog.Status = storage.ProgressStatusCompleted
	prog.Percent = 100
	prog.CompletedAt = &now
	return prog, nil
}

// HoldStage — приостановка in_progress -> on_hold. Причина обязательна.
func (s *WorkflowService) HoldStage(ctx context.Context, orderID, stageID int64, reason string) error {
	const op = "service.workflow.HoldStage"

	if reason == "" {
		return &ValidationError{Violations: []string{"для приостановки этапа требуется причина"}}
	}

	prog, err := s.storage.GetProgress(ctx, orderID, stageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !allowedTransitions[prog.Status][storage.ProgressStatusOnHold] {
		return &InvalidTransition{From: prog.Status, To: storage.ProgressStatusOnHold}
	}

	// Процент и отметки времени при паузе не трогаются
	upd := storage.ProgressUpdate{
		Status: storage.ProgressStatusOnHold,
		Notes:  &reason,
	}

	ok, err := s.storage.TransitionProgress(ctx, orderID, stageID, storage.ProgressStatusInProgress, upd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return s.concurrentTransition(ctx, orderID, stageID, storage.ProgressStatusOnHold)
	}

	return nil
}

// ResumeStage — возврат on_hold -> in_progress. started_at повторно не ставится.
func (s *WorkflowService) ResumeStage(ctx context.Context, orderID, stageID int64) error {
	const op = "service.workflow.ResumeStage"

	prog, err := s.storage.GetProgress(ctx, orderID, stageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if prog.Status != storage.ProgressStatusOnHold {
		return &InvalidTransition{From: prog.Status, To: storage.ProgressStatusInProgress}
	}

	upd := storage.ProgressUpdate{Status: storage.ProgressStatusInProgress}

	ok, err := s.storage.TransitionProgress(ctx, orderID, stageID, storage.ProgressStatusOnHold, upd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return s.concurrentTransition(ctx, orderID, stageID, storage.ProgressStatusInProgress)
	}

	return nil
}

// CancelStage — отмена возможна только из pending или on_hold:
// работающий этап сначала ставят на паузу.
func (s *WorkflowService) CancelStage(ctx context.Context, orderID, stageID int64, reason string) error {
	const op = "service.workflow.CancelStage"

	prog, err := s.storage.GetProgress(ctx, orderID, stageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !allowedTransitions[prog.Status][storage.ProgressStatusCancelled] {
		return &InvalidTransition{From: prog.Status, To: storage.ProgressStatusCancelled}
	}

	upd := storage.ProgressUpdate{Status: storage.ProgressStatusCancelled}
	if reason != "" {
		upd.Notes = &reason
	}

	ok, err := s.storage.TransitionProgress(ctx, orderID, stageID, prog.Status, upd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return s.concurrentTransition(ctx, orderID, stageID, storage.ProgressStatusCancelled)
	}

	return nil
}

// SetStagePercent — обновление процента работающего этапа оператором.
func (s *WorkflowService) SetStagePercent(ctx context.Context, orderID, stageID int64, percent float64) error {
	const op = "service.workflow.SetStagePercent"

	if percent < 0 || percent > 100 {
		return &ValidationError{Violations: []string{fmt.Sprintf("процент должен быть в пределах [0, 100], получено %.2f", percent)}}
	}

	ok, err := s.storage.UpdateProgressPercent(ctx, orderID, stageID, percent)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		// Процент меняется только у этапа в работе
		prog, ferr := s.storage.GetProgress(ctx, orderID, stageID)
		if ferr != nil {
			return fmt.Errorf("%s: %w", op, ferr)
		}
		return &InvalidTransition{From: prog.Status, To: storage.ProgressStatusInProgress}
	}

	return nil
}

// concurrentTransition — условный UPDATE никого не нашёл: статус уже сменили
// параллельно. Перечитываем фактический и отдаём его в ошибке.
func (s *WorkflowService) concurrentTransition(ctx context.Context, orderID, stageID int64, to string) error {
	from := "unknown"
	if fresh, err := s.storage.GetProgress(ctx, orderID, stageID); err == nil {
		from = fresh.Status
	}
	return &InvalidTransition{From: from, To: to}
}
