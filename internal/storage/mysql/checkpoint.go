package mysql

import (
	"context"
	"fmt"
	"flexopack/internal/storage"
)

// HasBlockingPrecheck — есть ли незакрытый входной контроль по паре (заказ, этап).
// Блокирует всё, что не прошло: pending, failed, in_review.
func (s *Storage) HasBlockingPrecheck(ctx context.Context, orderID, stageID int64) (bool, error) {
	const op = "storage.mysql.HasBlockingPrecheck"

	query := `
		SELECT COUNT(*) FROM flexo_quality_checkpoints
		WHERE order_id = ? AND stage_id = ? AND check_type = 'pre_stage' AND result <> 'passed'
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, orderID, stageID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count > 0, nil
}

func (s *Storage) SaveCheckpoint(ctx context.Context, cp storage.QualityCheckpoint) (int64, error) {
	const op = "storage.mysql.SaveCheckpoint"

	stmt := `INSERT INTO flexo_quality_checkpoints (ref_code, order_id, stage_id, check_type, result, notes)
            VALUES (?, ?, ?, ?, ?, ?)`

	exec, err := s.db.ExecContext(ctx, stmt, cp.RefCode, cp.OrderID, cp.StageID, cp.CheckType, cp.Result, cp.Notes)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка сохранения контрольной точки: %w", op, err)
	}

	return exec.LastInsertId()
}

func (s *Storage) UpdateCheckpointResult(ctx context.Context, refCode, result string, notes *string) (bool, error) {
	const op = "storage.mysql.UpdateCheckpointResult"

	stmt := `UPDATE flexo_quality_checkpoints SET result = ?, notes = COALESCE(?, notes) WHERE ref_code = ?`

	exec, err := s.db.ExecContext(ctx, stmt, result, notes, refCode)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка обновления результата контроля '%s': %w", op, refCode, err)
	}

	affected, err := exec.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected > 0, nil
}

func (s *Storage) ListOrderCheckpoints(ctx context.Context, orderID int64) ([]storage.QualityCheckpoint, error) {
	const op = "storage.mysql.ListOrderCheckpoints"

	query := `
		SELECT id, ref_code, order_id, stage_id, check_type, result, notes, created_at
		FROM flexo_quality_checkpoints
		WHERE order_id = ?
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var checkpoints []storage.QualityCheckpoint
	for rows.Next() {
		var cp storage.QualityCheckpoint
		err := rows.Scan(&cp.ID, &cp.RefCode, &cp.OrderID, &cp.StageID, &cp.CheckType, &cp.Result, &cp.Notes, &cp.CreatedAT)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка чтения контрольной точки: %w", op, err)
		}
		checkpoints = append(checkpoints, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return checkpoints, nil
}
