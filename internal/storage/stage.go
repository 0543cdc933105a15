package storage

import "errors"

// Уникальный ключ (org_id, sequence_order) сработал в базе
var ErrDuplicateSequence = errors.New("порядковый номер уже занят")

type Stage struct {
	ID                 int64    `json:"id"`
	OrgID              string   `json:"org_id"`
	Name               string   `json:"name"`
	StageType          string   `json:"stage_type"`
	SequenceOrder      int      `json:"sequence_order"`
	IsActive           bool     `json:"is_active"`
	MaterialCategories []string `json:"material_categories"`
}
