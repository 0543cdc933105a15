package storage

import "time"

const (
	OrderStatusDraft        = "draft"
	OrderStatusInProduction = "in_production"
	OrderStatusCompleted    = "completed"
	OrderStatusOnHold       = "on_hold"
	OrderStatusCancelled    = "cancelled"
)

type Order struct {
	ID           int64     `json:"id"`
	OrgID        string    `json:"org_id"`
	UIORN        string    `json:"uiorn"`
	ItemCode     string    `json:"item_code"`
	Quantity     float64   `json:"quantity"`
	DeliveryDate *string   `json:"delivery_date"`
	Priority     int       `json:"priority"`
	Status       string    `json:"status"`
	CreatedAT    time.Time `json:"created_at"`
	UpdatedAT    time.Time `json:"updated_at"`
}

// NewOrderDetails — данные на создание заказа от внешнего клиента.
type NewOrderDetails struct {
	OrgID        string  `json:"org_id"`
	ItemCode     string  `json:"item_code"`
	Quantity     float64 `json:"quantity"`
	DeliveryDate *string `json:"delivery_date"`
	Priority     int     `json:"priority"`
}

// OrderSummary — заказ вместе с прогрессом по этапам и общим процентом.
type OrderSummary struct {
	Order          Order           `json:"order"`
	Progress       []StageProgress `json:"progress"`
	OverallPercent float64         `json:"overall_percent"`
	CurrentStage   string          `json:"current_stage"`
}
