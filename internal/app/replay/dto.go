package replay

import "sodaclicker/internal/domain/economy"

type Request struct {
	PlayerID     string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

// Summary condenses the listed events.
type Summary struct {
	Purchases      map[string]int `json:"purchases"`
	LevelUps       int            `json:"level_ups"`
	CriticalClicks int            `json:"critical_clicks"`
	Saves          int            `json:"saves"`
	Loads          int            `json:"loads"`
	Resets         int            `json:"resets"`
	LatestLevel    string         `json:"latest_level,omitempty"`
}

type Response struct {
	Events  []economy.DomainEvent `json:"events"`
	Summary Summary               `json:"summary"`
}
