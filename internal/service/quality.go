package service

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"flexopack/internal/storage"
)

type CheckpointStorage interface {
	SaveCheckpoint(ctx context.Context, cp storage.QualityCheckpoint) (int64, error)
	UpdateCheckpointResult(ctx context.Context, refCode, result string, notes *string) (bool, error)
	ListOrderCheckpoints(ctx context.Context, orderID int64) ([]storage.QualityCheckpoint, error)
}

var checkTypes = map[string]bool{
	storage.CheckTypePreStage:  true,
	storage.CheckTypePostStage: true,
}

var checkResults = map[string]bool{
	storage.CheckResultPending:  true,
	storage.CheckResultPassed:   true,
	storage.CheckResultFailed:   true,
	storage.CheckResultInReview: true,
}

// QualityService — контрольные точки ОТК. Через него инспекция заводит
// входной контроль и закрывает результаты, после чего заблокированный
// этап можно запускать повторно.
type QualityService struct {
	storage CheckpointStorage
}

func NewQualityService(storage CheckpointStorage) *QualityService {
	return &QualityService{storage: storage}
}

func (s *QualityService) CreateCheckpoint(ctx context.Context, orderID, stageID int64, checkType string) (*storage.QualityCheckpoint, error) {
	const op = "service.quality.CreateCheckpoint"

	if !checkTypes[checkType] {
		return nil, &ValidationError{Violations: []string{fmt.Sprintf("неизвестный тип контроля '%s'", checkType)}}
	}

	cp := storage.QualityCheckpoint{
		RefCode:   uuid.NewString(),
		OrderID:   orderID,
		StageID:   stageID,
		CheckType: checkType,
		Result:    storage.CheckResultPending,
	}

	id, err := s.storage.SaveCheckpoint(ctx, cp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cp.ID = id
	return &cp, nil
}

func (s *QualityService) SetCheckpointResult(ctx context.Context, refCode, result string, notes *string) error {
	const op = "service.quality.SetCheckpointResult"

	if !checkResults[result] {
		return &ValidationError{Violations: []string{fmt.Sprintf("неизвестный результат контроля '%s'", result)}}
	}

	ok, err := s.storage.UpdateCheckpointResult(ctx, refCode, result, notes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: контрольная точка '%s' не найдена", op, refCode)
	}

	return nil
}

func (s *QualityService) ListOrderCheckpoints(ctx context.Context, orderID int64) ([]storage.QualityCheckpoint, error) {
	const op = "service.quality.ListOrderCheckpoints"

	checkpoints, err := s.storage.ListOrderCheckpoints(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return checkpoints, nil
}
