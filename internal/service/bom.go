package service

import (
	"context"
	"fmt"
	"strconv"
	"flexopack/internal/storage"
)

// Допуск на сумму долей компонентов, в процентных пунктах.
const WeightSumTolerance = 0.1

type BOMStorage interface {
	GetLatestBOMVersion(ctx context.Context, orgID, itemCode string) (string, error)
	SaveBOM(ctx context.Context, bom storage.BOM) (int64, error)
}

// BOMService проверяет рецептуру готового изделия перед тем,
// как принять её активной версией.
type BOMService struct {
	storage BOMStorage
}

func NewBOMService(storage BOMStorage) *BOMService {
	return &BOMService{storage: storage}
}

func (s *BOMService) SubmitBOM(ctx context.Context, candidate storage.CandidateBOM) (*storage.BOM, error) {
	const op = "service.bom.SubmitBOM"

	violations := validateComposition(candidate.Components)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	prev, err := s.storage.GetLatestBOMVersion(ctx, candidate.OrgID, candidate.ItemCode)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения последней версии: %w", op, err)
	}

	bom := storage.BOM{
		OrgID:    candidate.OrgID,
		ItemCode: candidate.ItemCode,
		Version:  NextBOMVersion(prev),
		YieldPct: candidate.YieldPct,
		ScrapPct: candidate.ScrapPct,
		Notes:    candidate.Notes,
		IsActive: true,
	}

	for i, comp := range candidate.Components {
		bom.Components = append(bom.Components, storage.BOMComponent{
			MaterialCode: comp.MaterialCode,
			MaterialName: comp.MaterialName,
			WeightPct:    comp.WeightPct,
			// Храним долю от единицы, не процент
			Ratio:           comp.WeightPct / 100,
			ConsumedAtStage: comp.ConsumedAtStage,
			Position:        i,
		})
	}

	id, err := s.storage.SaveBOM(ctx, bom)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения рецептуры: %w", op, err)
	}

	bom.ID = id
	return &bom, nil
}

// validateComposition прогоняет все проверки без досрочного выхода,
// чтобы клиент получил каждое нарушение за один заход.
func validateComposition(components []storage.CandidateComponent) []string {
	var violations []string

	if len(components) == 0 {
		violations = append(violations, "рецептура должна содержать хотя бы один компонент")
	}

	// Порядок сообщений: диапазоны, сумма, дубликаты
	sum := 0.0
	seen := map[string]bool{}
	var duplicates []string
	for _, comp := range components {
		if comp.WeightPct <= 0 || comp.WeightPct > 100 {
			violations = append(violations,
				fmt.Sprintf("доля компонента '%s' должна быть в пределах (0, 100], получено %.2f", comp.MaterialCode, comp.WeightPct))
		}
		if seen[comp.MaterialCode] {
			duplicates = append(duplicates,
				fmt.Sprintf("компонент '%s' указан более одного раза", comp.MaterialCode))
		}
		seen[comp.MaterialCode] = true
		sum += comp.WeightPct
	}

	if len(components) > 0 {
		diff := sum - 100
		if diff < -WeightSumTolerance {
			violations = append(violations,
				fmt.Sprintf("сумма долей %.2f%% вместо 100%%: не хватает %.2f%%", sum, -diff))
		} else if diff > WeightSumTolerance {
			violations = append(violations,
				fmt.Sprintf("сумма долей %.2f%% вместо 100%%: превышение на %.2f%%", sum, diff))
		}
	}

	violations = append(violations, duplicates...)

	return violations
}

// NextBOMVersion — версии растут на 0.1 от последней принятой,
// первая рецептура изделия получает "1.0".
func NextBOMVersion(prev string) string {
	if prev == "" {
		return "1.0"
	}

	v, err := strconv.ParseFloat(prev, 64)
	if err != nil {
		return "1.0"
	}

	return strconv.FormatFloat(v+0.1, 'f', 1, 64)
}
