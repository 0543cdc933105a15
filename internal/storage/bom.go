package storage

import "time"

type BOM struct {
	ID         int64          `json:"id"`
	OrgID      string         `json:"org_id"`
	ItemCode   string         `json:"item_code"`
	Version    string         `json:"version"`
	YieldPct   float64        `json:"yield_pct"`
	ScrapPct   float64        `json:"scrap_pct"`
	Notes      string         `json:"notes"`
	IsActive   bool           `json:"is_active"`
	Components []BOMComponent `json:"components"`
	CreatedAT  time.Time      `json:"created_at"`
}

type BOMComponent struct {
	ID           int64   `json:"id"`
	BOMID        int64   `json:"bom_id"`
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name"`
	WeightPct    float64 `json:"weight_pct"`
	// Ratio — доля от единицы (WeightPct / 100). В расчётах используется
	// только дробь, проценты наружу, смешивать нельзя.
	Ratio           float64 `json:"ratio"`
	ConsumedAtStage string  `json:"consumed_at_stage"`
	Position        int     `json:"position"`
}

// CandidateBOM — рецептура, присланная на проверку, до присвоения версии.
type CandidateBOM struct {
	OrgID      string               `json:"org_id"`
	ItemCode   string               `json:"item_code"`
	YieldPct   float64              `json:"yield_pct"`
	ScrapPct   float64              `json:"scrap_pct"`
	Notes      string               `json:"notes"`
	Components []CandidateComponent `json:"components"`
}

type CandidateComponent struct {
	MaterialCode    string  `json:"material_code"`
	MaterialName    string  `json:"material_name"`
	WeightPct       float64 `json:"weight_pct"`
	ConsumedAtStage string  `json:"consumed_at_stage"`
}
