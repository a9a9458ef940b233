package economy

import (
	"time"

	"sodaclicker/internal/domain/amount"
)

// State is the complete mutable game state of one player. Derived fields are
// recomputed from the owned counts and never trusted from storage.
type State struct {
	Sips amount.Amount `json:"sips"`

	Straws         amount.Amount `json:"straws"`
	Cups           amount.Amount `json:"cups"`
	Suctions       amount.Amount `json:"suctions"`
	FasterDrinks   amount.Amount `json:"faster_drinks"`
	WiderStraws    amount.Amount `json:"wider_straws"`
	BetterCups     amount.Amount `json:"better_cups"`
	CriticalClicks amount.Amount `json:"critical_clicks"`

	StrawUpCounter         amount.Amount `json:"straw_up_counter"`
	CupUpCounter           amount.Amount `json:"cup_up_counter"`
	CriticalClickUpCounter amount.Amount `json:"critical_click_up_counter"`

	CriticalClickChance     amount.Amount `json:"critical_click_chance"`
	CriticalClickMultiplier amount.Amount `json:"critical_click_multiplier"`
	SuctionClickBonus       amount.Amount `json:"suction_click_bonus"`
	Level                   amount.Amount `json:"level"`

	TotalSipsEarned      amount.Amount `json:"total_sips_earned"`
	TotalClicks          amount.Amount `json:"total_clicks"`
	TotalCriticalClicks  amount.Amount `json:"total_critical_clicks"`
	HighestSipsPerSecond amount.Amount `json:"highest_sips_per_second"`

	GameStartDate time.Time     `json:"game_start_date"`
	LastClickTime time.Time     `json:"last_click_time"`
	LastDrinkTime time.Time     `json:"last_drink_time"`
	LastSaveTime  time.Time     `json:"last_save_time"`
	DrinkProgress amount.Amount `json:"drink_progress"`

	AutosaveCounter int `json:"autosave_counter"`
	autosaveMark    time.Time

	// Derived.
	StrawSPD      amount.Amount `json:"straw_spd"`
	CupSPD        amount.Amount `json:"cup_spd"`
	SipsPerDrink  amount.Amount `json:"sips_per_drink"`
	SipsPerSecond amount.Amount `json:"sips_per_second"`
	LevelBoost    amount.Amount `json:"level_boost"`
	DrinkRate     time.Duration `json:"drink_rate"`
}

func newState(b Balance, now time.Time) State {
	now = stamp(now)
	return State{
		StrawUpCounter:          amount.One,
		CupUpCounter:            amount.One,
		CriticalClickUpCounter:  amount.One,
		CriticalClickChance:     amount.FromFloat(b.DefaultCriticalChance),
		CriticalClickMultiplier: amount.FromFloat(b.DefaultCriticalMultiplier),
		Level:                   amount.One,
		GameStartDate:           now,
		LastDrinkTime:           now,
	}
}

// stamp normalizes timestamps to UTC milliseconds, the resolution of saves.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond)
}
