package economy

import (
	"errors"
	"fmt"
	"time"

	"sodaclicker/internal/domain/amount"
)

var ErrInvalidBalance = errors.New("invalid balance")

type AutosaveMode string

const (
	AutosaveDrinks  AutosaveMode = "drinks"
	AutosaveSeconds AutosaveMode = "seconds"
)

const (
	DefaultMaxLevel = 1000
	// LevelCeiling bounds MaxLevel so the level boost stays cheap to compute.
	LevelCeiling = 10_000
)

type CostCurve struct {
	BaseCost float64 `yaml:"base_cost" json:"base_cost"`
	Scaling  float64 `yaml:"scaling" json:"scaling"`
}

type Autosave struct {
	Mode     AutosaveMode `yaml:"mode" json:"mode"`
	Interval int          `yaml:"interval" json:"interval"`
}

type Balance struct {
	BaseSipsPerDrink float64 `yaml:"base_sips_per_drink" json:"base_sips_per_drink"`
	StrawBaseSPD     float64 `yaml:"straw_base_spd" json:"straw_base_spd"`
	CupBaseSPD       float64 `yaml:"cup_base_spd" json:"cup_base_spd"`

	WiderStrawsMultiplierPerLevel float64 `yaml:"wider_straws_multiplier_per_level" json:"wider_straws_multiplier_per_level"`
	BetterCupsMultiplierPerLevel  float64 `yaml:"better_cups_multiplier_per_level" json:"better_cups_multiplier_per_level"`

	Straw               CostCurve `yaml:"straw" json:"straw"`
	Cup                 CostCurve `yaml:"cup" json:"cup"`
	Suction             CostCurve `yaml:"suction" json:"suction"`
	FasterDrinks        CostCurve `yaml:"faster_drinks" json:"faster_drinks"`
	CriticalClickChance CostCurve `yaml:"critical_click_chance" json:"critical_click_chance"`

	WiderStrawsBaseCost        float64 `yaml:"wider_straws_base_cost" json:"wider_straws_base_cost"`
	BetterCupsBaseCost         float64 `yaml:"better_cups_base_cost" json:"better_cups_base_cost"`
	CriticalMultiplierBaseCost float64 `yaml:"critical_multiplier_base_cost" json:"critical_multiplier_base_cost"`
	LevelUpBaseCost            float64 `yaml:"level_up_base_cost" json:"level_up_base_cost"`
	// MaxLevel is the last level that can be bought. Saves above it load at it.
	MaxLevel int64 `yaml:"max_level" json:"max_level"`

	BaseClickValue            float64 `yaml:"base_click_value" json:"base_click_value"`
	SuctionClickBonusPerLevel float64 `yaml:"suction_click_bonus_per_level" json:"suction_click_bonus_per_level"`

	DefaultCriticalChance      float64 `yaml:"default_critical_chance" json:"default_critical_chance"`
	CriticalChancePerLevel     float64 `yaml:"critical_chance_per_level" json:"critical_chance_per_level"`
	DefaultCriticalMultiplier  float64 `yaml:"default_critical_multiplier" json:"default_critical_multiplier"`
	CriticalMultiplierPerLevel float64 `yaml:"critical_multiplier_per_level" json:"critical_multiplier_per_level"`

	BaseDrinkRateMs       int64   `yaml:"base_drink_rate_ms" json:"base_drink_rate_ms"`
	MinDrinkRateMs        int64   `yaml:"min_drink_rate_ms" json:"min_drink_rate_ms"`
	FasterDrinksReduction float64 `yaml:"faster_drinks_reduction" json:"faster_drinks_reduction"`

	Autosave Autosave `yaml:"autosave" json:"autosave"`
}

func DefaultBalance() Balance {
	return Balance{
		BaseSipsPerDrink: 1,
		StrawBaseSPD:     0.6,
		CupBaseSPD:       1.2,

		WiderStrawsMultiplierPerLevel: 0.5,
		BetterCupsMultiplierPerLevel:  0.5,

		Straw:               CostCurve{BaseCost: 10, Scaling: 1.1},
		Cup:                 CostCurve{BaseCost: 20, Scaling: 1.2},
		Suction:             CostCurve{BaseCost: 40, Scaling: 1.12},
		FasterDrinks:        CostCurve{BaseCost: 80, Scaling: 1.1},
		CriticalClickChance: CostCurve{BaseCost: 60, Scaling: 1.15},

		WiderStrawsBaseCost:        150,
		BetterCupsBaseCost:         400,
		CriticalMultiplierBaseCost: 500,
		LevelUpBaseCost:            3000,
		MaxLevel:                   DefaultMaxLevel,

		BaseClickValue:            1,
		SuctionClickBonusPerLevel: 0.3,

		DefaultCriticalChance:      0.001,
		CriticalChancePerLevel:     0.001,
		DefaultCriticalMultiplier:  5,
		CriticalMultiplierPerLevel: 1,

		BaseDrinkRateMs:       5000,
		MinDrinkRateMs:        1000,
		FasterDrinksReduction: 0.05,

		Autosave: Autosave{Mode: AutosaveDrinks, Interval: 10},
	}
}

func (b Balance) BaseDrinkRate() time.Duration {
	return time.Duration(b.BaseDrinkRateMs) * time.Millisecond
}

// levelCap is MaxLevel, or DefaultMaxLevel when unset.
func (b Balance) levelCap() amount.Amount {
	n := b.MaxLevel
	if n <= 0 {
		n = DefaultMaxLevel
	}
	if n > LevelCeiling {
		n = LevelCeiling
	}
	return amount.FromInt(n)
}

func (b Balance) MinDrinkRate() time.Duration {
	return time.Duration(b.MinDrinkRateMs) * time.Millisecond
}

// Validate rejects balances whose cost curves would not be strictly
// increasing: floor(c*s^(n+1)) > floor(c*s^n) needs c*(s-1) >= 1.
func (b Balance) Validate() error {
	curves := map[string]CostCurve{
		"straw":                 b.Straw,
		"cup":                   b.Cup,
		"suction":               b.Suction,
		"faster_drinks":         b.FasterDrinks,
		"critical_click_chance": b.CriticalClickChance,
	}
	for name, c := range curves {
		if c.BaseCost <= 0 || c.Scaling <= 1 {
			return fmt.Errorf("%w: %s curve needs base_cost > 0 and scaling > 1", ErrInvalidBalance, name)
		}
		if c.BaseCost*(c.Scaling-1) < 1 {
			return fmt.Errorf("%w: %s curve is not strictly increasing", ErrInvalidBalance, name)
		}
	}
	linear := map[string]float64{
		"wider_straws":              b.WiderStrawsBaseCost,
		"better_cups":               b.BetterCupsBaseCost,
		"critical_click_multiplier": b.CriticalMultiplierBaseCost,
		"level_up":                  b.LevelUpBaseCost,
	}
	for name, cost := range linear {
		if cost <= 0 {
			return fmt.Errorf("%w: %s base cost must be positive", ErrInvalidBalance, name)
		}
	}
	if b.MaxLevel < 1 || b.MaxLevel > LevelCeiling {
		return fmt.Errorf("%w: max_level must be in [1,%d]", ErrInvalidBalance, LevelCeiling)
	}
	if b.BaseDrinkRateMs <= 0 || b.MinDrinkRateMs <= 0 || b.MinDrinkRateMs > b.BaseDrinkRateMs {
		return fmt.Errorf("%w: drink rates must satisfy 0 < min <= base", ErrInvalidBalance)
	}
	if b.FasterDrinksReduction < 0 || b.FasterDrinksReduction >= 1 {
		return fmt.Errorf("%w: faster_drinks_reduction must be in [0,1)", ErrInvalidBalance)
	}
	if b.BaseSipsPerDrink < 0 || b.StrawBaseSPD < 0 || b.CupBaseSPD < 0 {
		return fmt.Errorf("%w: production rates must be non-negative", ErrInvalidBalance)
	}
	if b.DefaultCriticalChance < 0 || b.DefaultCriticalChance > 1 || b.DefaultCriticalMultiplier < 1 {
		return fmt.Errorf("%w: critical defaults out of range", ErrInvalidBalance)
	}
	switch b.Autosave.Mode {
	case AutosaveDrinks, AutosaveSeconds:
	default:
		return fmt.Errorf("%w: unknown autosave mode %q", ErrInvalidBalance, b.Autosave.Mode)
	}
	if b.Autosave.Interval <= 0 {
		return fmt.Errorf("%w: autosave interval must be positive", ErrInvalidBalance)
	}
	return nil
}
