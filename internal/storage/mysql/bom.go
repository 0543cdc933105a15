package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"flexopack/internal/storage"
)

func (s *Storage) GetLatestBOMVersion(ctx context.Context, orgID, itemCode string) (string, error) {
	const op = "storage.mysql.GetLatestBOMVersion"

	query := `
		SELECT version FROM flexo_boms
		WHERE org_id = ? AND item_code = ?
		ORDER BY CAST(version AS DECIMAL(6,1)) DESC
		LIMIT 1
	`

	var version string
	err := s.db.QueryRowContext(ctx, query, orgID, itemCode).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return version, nil
}

// SaveBOM сохраняет принятую рецептуру целиком: либо шапка и все компоненты,
// либо ничего. Прежняя активная версия по этому изделию гасится в той же транзакции.
func (s *Storage) SaveBOM(ctx context.Context, bom storage.BOM) (int64, error) {
	const op = "storage.mysql.SaveBOM"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: старт транзакции: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE flexo_boms SET is_active = FALSE WHERE org_id = ? AND item_code = ?`,
		bom.OrgID, bom.ItemCode)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка деактивации прежних версий: %w", op, err)
	}

	stmtBOM := `INSERT INTO flexo_boms (org_id, item_code, version, yield_pct, scrap_pct, notes, is_active)
            VALUES (?, ?, ?, ?, ?, ?, TRUE)`

	exec, err := tx.ExecContext(ctx, stmtBOM, bom.OrgID, bom.ItemCode, bom.Version, bom.YieldPct, bom.ScrapPct, bom.Notes)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка сохранения рецептуры: %w", op, err)
	}

	bomID, err := exec.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	prepareInsert, err := tx.PrepareContext(ctx, `
		INSERT INTO flexo_bom_components
			(bom_id, material_code, material_name, weight_pct, ratio, consumed_at_stage, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка подготовки вставки компонентов: %w", op, err)
	}
	defer prepareInsert.Close()

	for i, comp := range bom.Components {
		_, err := prepareInsert.ExecContext(ctx, bomID, comp.MaterialCode, comp.MaterialName,
			comp.WeightPct, comp.Ratio, comp.ConsumedAtStage, i)
		if err != nil {
			return 0, fmt.Errorf("%s: ошибка вставки компонента %s: %w", op, comp.MaterialCode, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: ошибка завершения транзакции: %w", op, err)
	}

	return bomID, nil
}

func (s *Storage) GetActiveBOM(ctx context.Context, orgID, itemCode string) (*storage.BOM, error) {
	const op = "storage.mysql.GetActiveBOM"

	query := `
		SELECT id, org_id, item_code, version, yield_pct, scrap_pct, notes, is_active, created_at
		FROM flexo_boms
		WHERE org_id = ? AND item_code = ? AND is_active = TRUE
	`

	bom := &storage.BOM{}
	err := s.db.QueryRowContext(ctx, query, orgID, itemCode).Scan(
		&bom.ID,
		&bom.OrgID,
		&bom.ItemCode,
		&bom.Version,
		&bom.YieldPct,
		&bom.ScrapPct,
		&bom.Notes,
		&bom.IsActive,
		&bom.CreatedAT,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: активная рецептура для '%s' не найдена: %w", op, itemCode, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bom_id, material_code, material_name, weight_pct, ratio, consumed_at_stage, position
		FROM flexo_bom_components
		WHERE bom_id = ?
		ORDER BY position
	`, bom.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения компонентов: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var comp storage.BOMComponent
		err := rows.Scan(&comp.ID, &comp.BOMID, &comp.MaterialCode, &comp.MaterialName,
			&comp.WeightPct, &comp.Ratio, &comp.ConsumedAtStage, &comp.Position)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка чтения компонента: %w", op, err)
		}
		bom.Components = append(bom.Components, comp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bom, nil
}
