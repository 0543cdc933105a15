package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-sql-driver/mysql"
	"flexopack/internal/storage"
)

func (s *Storage) ListActiveStages(ctx context.Context, orgID string) ([]storage.Stage, error) {
	const op = "storage.mysql.ListActiveStages"

	stmt := `
		SELECT id, org_id, name, stage_type, sequence_order, is_active, material_categories
		FROM flexo_stages
		WHERE org_id = ? AND is_active = TRUE
		ORDER BY sequence_order
	`

	rows, err := s.db.QueryContext(ctx, stmt, orgID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var stages []storage.Stage
	for rows.Next() {
		var st storage.Stage
		var categoriesJSON string
		err := rows.Scan(&st.ID, &st.OrgID, &st.Name, &st.StageType, &st.SequenceOrder, &st.IsActive, &categoriesJSON)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка чтения этапа: %w", op, err)
		}

		// Категории материалов лежат в JSON-колонке
		if err := json.Unmarshal([]byte(categoriesJSON), &st.MaterialCategories); err != nil {
			return nil, fmt.Errorf("%s: ошибка парсинга категорий материалов этапа %d: %w", op, st.ID, err)
		}

		stages = append(stages, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stages, nil
}

func (s *Storage) SaveStage(ctx context.Context, st storage.Stage) (int64, error) {
	const op = "storage.mysql.SaveStage"

	categoriesJSON, err := json.Marshal(st.MaterialCategories)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка сериализации категорий материалов: %w", op, err)
	}

	stmt := `INSERT INTO flexo_stages (org_id, name, stage_type, sequence_order, is_active, material_categories)
            VALUES (?, ?, ?, ?, ?, ?)`

	exec, err := s.db.ExecContext(ctx, stmt, st.OrgID, st.Name, st.StageType, st.SequenceOrder, st.IsActive, string(categoriesJSON))
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return 0, fmt.Errorf("%s: этап с порядковым номером %d: %w", op, st.SequenceOrder, storage.ErrDuplicateSequence)
		}
		return 0, fmt.Errorf("%s: ошибка сохранения этапа: %w", op, err)
	}

	return exec.LastInsertId()
}

func (s *Storage) UpdateStageSequence(ctx context.Context, stageID int64, sequenceOrder int) error {
	const op = "storage.mysql.UpdateStageSequence"

	stmt := `UPDATE flexo_stages SET sequence_order = ? WHERE id = ?`

	_, err := s.db.ExecContext(ctx, stmt, sequenceOrder, stageID)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления порядка этапа %d: %w", op, stageID, err)
	}

	return nil
}

func (s *Storage) UpdateStageActive(ctx context.Context, stageID int64, active bool) error {
	const op = "storage.mysql.UpdateStageActive"

	// Этап не удаляется: исторические записи прогресса продолжают на него ссылаться
	stmt := `UPDATE flexo_stages SET is_active = ? WHERE id = ?`

	_, err := s.db.ExecContext(ctx, stmt, active, stageID)
	if err != nil {
		return fmt.Errorf("%s: ошибка смены активности этапа %d: %w", op, stageID, err)
	}

	return nil
}
