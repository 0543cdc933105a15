package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"flexopack/internal/storage"
)

func (s *Storage) GetProgress(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error) {
	const op = "storage.mysql.GetProgress"

	query := `
		SELECT p.id, p.order_id, p.stage_id, st.name, st.stage_type, st.sequence_order,
		       p.status, p.percent, p.started_at, p.completed_at, p.notes, p.stage_data, p.quality_status
		FROM flexo_stage_progress p
		JOIN flexo_stages st ON st.id = p.stage_id
		WHERE p.order_id = ? AND p.stage_id = ?
	`

	pr := &storage.StageProgress{}
	var stageDataJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, orderID, stageID).Scan(
		&pr.ID,
		&pr.OrderID,
		&pr.StageID,
		&pr.StageName,
		&pr.StageType,
		&pr.SequenceOrder,
		&pr.Status,
		&pr.Percent,
		&pr.StartedAt,
		&pr.CompletedAt,
		&pr.Notes,
		&stageDataJSON,
		&pr.QualityStatus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: прогресс заказа %d по этапу %d не найден: %w", op, orderID, stageID, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stageDataJSON.Valid && stageDataJSON.String != "" {
		if err := json.Unmarshal([]byte(stageDataJSON.String), &pr.StageData); err != nil {
			return nil, fmt.Errorf("%s: ошибка парсинга данных этапа: %w", op, err)
		}
	}

	return pr, nil
}

func (s *Storage) ListOrderProgress(ctx context.Context, orderID int64) ([]storage.StageProgress, error) {
	const op = "storage.mysql.ListOrderProgress"

	query := `
		SELECT p.id, p.order_id, p.stage_id, st.name, st.stage_type, st.sequence_order,
		       p.status, p.percent, p.started_at, p.completed_at, p.notes, p.stage_data, p.quality_status
		FROM flexo_stage_progress p
		JOIN flexo_stages st ON st.id = p.stage_id
		WHERE p.order_id = ?
		ORDER BY st.sequence_order
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var progress []storage.StageProgress
	for rows.Next() {
		var pr storage.StageProgress
		var stageDataJSON sql.NullString
		err := rows.Scan(
			&pr.ID,
			&pr.OrderID,
			&pr.StageID,
			&pr.StageName,
			&pr.StageType,
			&pr.SequenceOrder,
			&pr.Status,
			&pr.Percent,
			&pr.StartedAt,
			&pr.CompletedAt,
			&pr.Notes,
			&stageDataJSON,
			&pr.QualityStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка чтения прогресса: %w", op, err)
		}

		if stageDataJSON.Valid && stageDataJSON.String != "" {
			if err := json.Unmarshal([]byte(stageDataJSON.String), &pr.StageData); err != nil {
				return nil, fmt.Errorf("%s: ошибка парсинга данных этапа: %w", op, err)
			}
		}

		progress = append(progress, pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return progress, nil
}

// TransitionProgress — условный UPDATE по ожидаемому текущему статусу.
// Возвращает false, если запись уже в другом статусе: из двух конкурирующих
// переходов выигрывает ровно один.
func (s *Storage) TransitionProgress(ctx context.Context, orderID, stageID int64, from string, upd storage.ProgressUpdate) (bool, error) {
	const op = "storage.mysql.TransitionProgress"

	stmt := `
		UPDATE flexo_stage_progress
		SET status = ?,
		    percent = COALESCE(?, percent),
		    notes = COALESCE(?, notes),
		    started_at = COALESCE(started_at, ?),
		    completed_at = COALESCE(completed_at, ?)
		WHERE order_id = ? AND stage_id = ? AND status = ?
	`

	exec, err := s.db.ExecContext(ctx, stmt, upd.Status, upd.Percent, upd.Notes, upd.StartedAt, upd.CompletedAt,
		orderID, stageID, from)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка перехода статуса заказа %d по этапу %d: %w", op, orderID, stageID, err)
	}

	affected, err := exec.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected > 0, nil
}

func (s *Storage) UpdateProgressPercent(ctx context.Context, orderID, stageID int64, percent float64) (bool, error) {
	const op = "storage.mysql.UpdateProgressPercent"

	stmt := `UPDATE flexo_stage_progress SET percent = ? WHERE order_id = ? AND stage_id = ? AND status = 'in_progress'`

	exec, err := s.db.ExecContext(ctx, stmt, percent, orderID, stageID)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка обновления процента заказа %d по этапу %d: %w", op, orderID, stageID, err)
	}

	affected, err := exec.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected > 0, nil
}
