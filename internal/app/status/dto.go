package status

import (
	"sodaclicker/internal/app/stateview"
	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"
)

type Request struct {
	PlayerID string
}

type Counts struct {
	Straws         amount.Amount `json:"straws"`
	Cups           amount.Amount `json:"cups"`
	Suctions       amount.Amount `json:"suctions"`
	FasterDrinks   amount.Amount `json:"faster_drinks"`
	WiderStraws    amount.Amount `json:"wider_straws"`
	BetterCups     amount.Amount `json:"better_cups"`
	CriticalClicks amount.Amount `json:"critical_clicks"`
}

type Response struct {
	PlayerID             string                 `json:"player_id"`
	Sips                 amount.Amount          `json:"sips"`
	SipsDisplay          string                 `json:"sips_display"`
	SipsPerDrink         amount.Amount          `json:"sips_per_drink"`
	SipsPerSecond        amount.Amount          `json:"sips_per_second"`
	SipsPerSecondDisplay string                 `json:"sips_per_second_display"`
	DrinkRateMs          int64                  `json:"drink_rate_ms"`
	DrinkProgress        amount.Amount          `json:"drink_progress"`
	Level                amount.Amount          `json:"level"`
	ClickValue           amount.Amount          `json:"click_value"`
	CriticalChance       amount.Amount          `json:"critical_click_chance"`
	CriticalMultiplier   amount.Amount          `json:"critical_click_multiplier"`
	Counts               Counts                 `json:"counts"`
	Offers               []economy.Offer        `json:"offers"`
	Waits                []stateview.AffordWait `json:"waits"`
	Stats                economy.Stats          `json:"stats"`
	LastSaveTime         economy.Millis         `json:"last_save_time"`
	Degraded             bool                   `json:"degraded"`
}
