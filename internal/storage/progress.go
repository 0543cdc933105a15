package storage

import "time"

const (
	ProgressStatusPending    = "pending"
	ProgressStatusInProgress = "in_progress"
	ProgressStatusOnHold     = "on_hold"
	ProgressStatusCompleted  = "completed"
	ProgressStatusCancelled  = "cancelled"
)

type StageProgress struct {
	ID            int64                  `json:"id"`
	OrderID       int64                  `json:"order_id"`
	StageID       int64                  `json:"stage_id"`
	StageName     string                 `json:"stage_name"`
	StageType     string                 `json:"stage_type"`
	SequenceOrder int                    `json:"sequence_order"`
	Status        string                 `json:"status"`
	Percent       float64                `json:"percent"`
	StartedAt     *time.Time             `json:"started_at"`
	CompletedAt   *time.Time             `json:"completed_at"`
	Notes         *string                `json:"notes"`
	StageData     map[string]interface{} `json:"stage_data"`
	QualityStatus string                 `json:"quality_status"`
}

// ProgressUpdate — изменяемые поля при переходе статуса.
// nil-поля не трогаются; started_at и completed_at ставятся один раз.
type ProgressUpdate struct {
	Status      string
	Percent     *float64
	Notes       *string
	StartedAt   *time.Time
	CompletedAt *time.Time
}
