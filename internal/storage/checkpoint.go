package storage

import "time"

const (
	CheckTypePreStage  = "pre_stage"
	CheckTypePostStage = "post_stage"
)

const (
	CheckResultPending  = "pending"
	CheckResultPassed   = "passed"
	CheckResultFailed   = "failed"
	CheckResultInReview = "in_review"
)

type QualityCheckpoint struct {
	ID        int64     `json:"id"`
	RefCode   string    `json:"ref_code"`
	OrderID   int64     `json:"order_id"`
	StageID   int64     `json:"stage_id"`
	CheckType string    `json:"check_type"`
	Result    string    `json:"result"`
	Notes     *string   `json:"notes"`
	CreatedAT time.Time `json:"created_at"`
}
