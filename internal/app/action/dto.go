package action

import (
	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"
)

type ClickRequest struct {
	PlayerID string
	X        float64
	Y        float64
}

type ClickResponse struct {
	Value       amount.Amount         `json:"value"`
	Display     string                `json:"display"`
	Critical    bool                  `json:"critical"`
	Sips        amount.Amount         `json:"sips"`
	TotalClicks amount.Amount         `json:"total_clicks"`
	X           float64               `json:"x"`
	Y           float64               `json:"y"`
	Events      []economy.DomainEvent `json:"events,omitempty"`
}

type PurchaseRequest struct {
	PlayerID       string
	Upgrade        economy.UpgradeID
	IdempotencyKey string
}

type PurchaseResponse struct {
	economy.PurchaseResult
	SipsPerSecond amount.Amount `json:"sips_per_second"`
	Replayed      bool          `json:"replayed"`
}
