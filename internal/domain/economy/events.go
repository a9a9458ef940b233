package economy

import "time"

const (
	EventPurchaseCompleted = "purchase_completed"
	EventLevelUp           = "level_up"
	EventCriticalClick     = "critical_click"
	EventGameSaved         = "game_saved"
	EventGameLoaded        = "game_loaded"
	EventGameReset         = "game_reset"
)

type DomainEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}
