package service

import (
	"context"
	"errors"
	"fmt"
	"flexopack/internal/constants"
	"flexopack/internal/storage"
)

type CatalogStorage interface {
	ListActiveStages(ctx context.Context, orgID string) ([]storage.Stage, error)
	SaveStage(ctx context.Context, st storage.Stage) (int64, error)
	UpdateStageSequence(ctx context.Context, stageID int64, sequenceOrder int) error
	UpdateStageActive(ctx context.Context, stageID int64, active bool) error
}

// CatalogService — справочник этапов маршрута организации.
type CatalogService struct {
	storage CatalogStorage
}

func NewCatalogService(storage CatalogStorage) *CatalogService {
	return &CatalogService{storage: storage}
}

func (s *CatalogService) ListActiveStages(ctx context.Context, orgID string) ([]storage.Stage, error) {
	const op = "service.catalog.ListActiveStages"

	stages, err := s.storage.ListActiveStages(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stages, nil
}

func (s *CatalogService) CreateStage(ctx context.Context, orgID, name, stageType string, sequenceOrder int) (*storage.Stage, error) {
	const op = "service.catalog.CreateStage"

	var violations []string
	if name == "" {
		violations = append(violations, "название этапа обязательно")
	}
	if !constants.StageTypes[stageType] {
		violations = append(violations, fmt.Sprintf("неизвестный тип этапа '%s'", stageType))
	}
	if sequenceOrder < 1 {
		violations = append(violations, "порядковый номер должен быть не меньше 1")
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	stages, err := s.storage.ListActiveStages(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Коллизия порядкового номера — отказ, а не тихая перестановка
	for _, st := range stages {
		if st.SequenceOrder == sequenceOrder {
			return nil, &DuplicateSequenceError{SequenceOrder: sequenceOrder}
		}
	}

	stage := storage.Stage{
		OrgID:              orgID,
		Name:               name,
		StageType:          stageType,
		SequenceOrder:      sequenceOrder,
		IsActive:           true,
		MaterialCategories: constants.StageMaterialCategories[stageType],
	}

	id, err := s.storage.SaveStage(ctx, stage)
	if err != nil {
		// Гонка двух создателей: проверку выше оба прошли, но
		// уникальный ключ в базе пропустил только одного
		if errors.Is(err, storage.ErrDuplicateSequence) {
			return nil, &DuplicateSequenceError{SequenceOrder: sequenceOrder}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stage.ID = id
	return &stage, nil
}

// ReorderStage не раздвигает соседей: разруливать коллизии — забота вызывающего.
func (s *CatalogService) ReorderStage(ctx context.Context, stageID int64, sequenceOrder int) error {
	const op = "service.catalog.ReorderStage"

	if sequenceOrder < 1 {
		sequenceOrder = 1
	}

	if err := s.storage.UpdateStageSequence(ctx, stageID, sequenceOrder); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *CatalogService) SetStageActive(ctx context.Context, stageID int64, active bool) error {
	const op = "service.catalog.SetStageActive"

	if err := s.storage.UpdateStageActive(ctx, stageID, active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
