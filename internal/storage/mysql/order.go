package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"flexopack/internal/storage"
)

func (s *Storage) SaveOrderWithProgress(ctx context.Context, order storage.Order, progress []storage.StageProgress) (int64, error) {
	const op = "storage.mysql.SaveOrderWithProgress"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: старт транзакции: %w", op, err)
	}
	defer tx.Rollback()

	stmtOrder := `INSERT INTO flexo_orders (org_id, uiorn, item_code, quantity, delivery_date, priority, status)
            VALUES (?, ?, ?, ?, ?, ?, ?)`

	exec, err := tx.ExecContext(ctx, stmtOrder, order.OrgID, order.UIORN, order.ItemCode, order.Quantity,
		order.DeliveryDate, order.Priority, order.Status)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка сохранения заказа: %w", op, err)
	}

	orderID, err := exec.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// Вставляем по одной записи прогресса на каждый активный этап
	prepareInsert, err := tx.PrepareContext(ctx, `
		INSERT INTO flexo_stage_progress (order_id, stage_id, status, percent, quality_status)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка подготовки вставки прогресса: %w", op, err)
	}
	defer prepareInsert.Close()

	for _, pr := range progress {
		_, err := prepareInsert.ExecContext(ctx, orderID, pr.StageID, pr.Status, pr.Percent, pr.QualityStatus)
		if err != nil {
			return 0, fmt.Errorf("%s: ошибка вставки прогресса этапа %d: %w", op, pr.StageID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: ошибка завершения транзакции: %w", op, err)
	}

	return orderID, nil
}

func (s *Storage) GetOrder(ctx context.Context, orderID int64) (*storage.Order, error) {
	const op = "storage.mysql.GetOrder"

	query := `
		SELECT id, org_id, uiorn, item_code, quantity, delivery_date, priority, status, created_at, updated_at
		FROM flexo_orders
		WHERE id = ?
	`

	order := &storage.Order{}
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID,
		&order.OrgID,
		&order.UIORN,
		&order.ItemCode,
		&order.Quantity,
		&order.DeliveryDate,
		&order.Priority,
		&order.Status,
		&order.CreatedAT,
		&order.UpdatedAT,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: заказ с id=%d не найден: %w", op, orderID, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

func (s *Storage) GetOrderByUIORN(ctx context.Context, orgID, uiorn string) (*storage.Order, error) {
	const op = "storage.mysql.GetOrderByUIORN"

	query := `
		SELECT id, org_id, uiorn, item_code, quantity, delivery_date, priority, status, created_at, updated_at
		FROM flexo_orders
		WHERE org_id = ? AND uiorn = ?
	`

	order := &storage.Order{}
	err := s.db.QueryRowContext(ctx, query, orgID, uiorn).Scan(
		&order.ID,
		&order.OrgID,
		&order.UIORN,
		&order.ItemCode,
		&order.Quantity,
		&order.DeliveryDate,
		&order.Priority,
		&order.Status,
		&order.CreatedAT,
		&order.UpdatedAT,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: заказ с uiorn='%s' не найден: %w", op, uiorn, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

func (s *Storage) ListOrders(ctx context.Context, orgID, status string) ([]storage.Order, error) {
	const op = "storage.mysql.ListOrders"

	query := `
		SELECT id, org_id, uiorn, item_code, quantity, delivery_date, priority, status, created_at, updated_at
		FROM flexo_orders
		WHERE org_id = ? AND (? = '' OR status = ?)
		ORDER BY priority, created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, orgID, status, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []storage.Order
	for rows.Next() {
		var order storage.Order
		err := rows.Scan(
			&order.ID,
			&order.OrgID,
			&order.UIORN,
			&order.ItemCode,
			&order.Quantity,
			&order.DeliveryDate,
			&order.Priority,
			&order.Status,
			&order.CreatedAT,
			&order.UpdatedAT,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка чтения заказа: %w", op, err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

func (s *Storage) MarkOrderInProduction(ctx context.Context, orderID int64) error {
	const op = "storage.mysql.MarkOrderInProduction"

	// Условный UPDATE: повторный запуск этапа не трогает уже запущенный заказ
	stmt := `UPDATE flexo_orders SET status = 'in_production' WHERE id = ? AND status = 'draft'`

	_, err := s.db.ExecContext(ctx, stmt, orderID)
	if err != nil {
		return fmt.Errorf("%s: ошибка перевода заказа %d в производство: %w", op, orderID, err)
	}

	return nil
}

func (s *Storage) MarkOrderCompleted(ctx context.Context, orderID int64) error {
	const op = "storage.mysql.MarkOrderCompleted"

	stmt := `UPDATE flexo_orders SET status = 'completed' WHERE id = ? AND status = 'in_production'`

	_, err := s.db.ExecContext(ctx, stmt, orderID)
	if err != nil {
		return fmt.Errorf("%s: ошибка завершения заказа %d: %w", op, orderID, err)
	}

	return nil
}
