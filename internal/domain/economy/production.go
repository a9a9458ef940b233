package economy

import (
	"time"

	"sodaclicker/internal/domain/amount"
)

type ProductionInputs struct {
	Straws      amount.Amount
	Cups        amount.Amount
	WiderStraws amount.Amount
	BetterCups  amount.Amount
}

type Production struct {
	StrawSPD     amount.Amount
	CupSPD       amount.Amount
	SipsPerDrink amount.Amount
}

// RecalcProduction maps owned counts to per-drink production. It has no level
// term. Negative inputs count as zero, so the result is never below the base.
func RecalcProduction(in ProductionInputs, b Balance) Production {
	straws := nonNegative(in.Straws)
	cups := nonNegative(in.Cups)
	wider := nonNegative(in.WiderStraws)
	better := nonNegative(in.BetterCups)

	strawSPD := amount.FromFloat(b.StrawBaseSPD).Mul(
		amount.One.Add(wider.Mul(amount.FromFloat(b.WiderStrawsMultiplierPerLevel))),
	)
	cupSPD := amount.FromFloat(b.CupBaseSPD).Mul(
		amount.One.Add(better.Mul(amount.FromFloat(b.BetterCupsMultiplierPerLevel))),
	)
	spd := amount.FromFloat(b.BaseSipsPerDrink).
		Add(strawSPD.Mul(straws)).
		Add(cupSPD.Mul(cups))

	return Production{StrawSPD: strawSPD, CupSPD: cupSPD, SipsPerDrink: spd}
}

// maxRateExponent caps the faster-drinks exponent; the rate has long since hit
// the floor by then.
const maxRateExponent = 10_000

func DrinkRateFor(fasterDrinks amount.Amount, b Balance) time.Duration {
	n := nonNegative(fasterDrinks).Int64()
	if n > maxRateExponent {
		n = maxRateExponent
	}
	factor := amount.One.Sub(amount.FromFloat(b.FasterDrinksReduction)).Pow(int(n))
	ms := amount.FromInt(b.BaseDrinkRateMs).Mul(factor).Int64()
	if ms < b.MinDrinkRateMs {
		ms = b.MinDrinkRateMs
	}
	return time.Duration(ms) * time.Millisecond
}

// SipsPerSecondFor converts a per-drink amount into a per-second rate.
func SipsPerSecondFor(spd amount.Amount, rate time.Duration) amount.Amount {
	ms := rate.Milliseconds()
	if ms <= 0 {
		return amount.Zero
	}
	return spd.Mul(amount.FromInt(1000)).Div(amount.FromInt(ms))
}

// LevelBoostFor is the product of every level reached: level!. Levels past
// LevelCeiling add nothing.
func LevelBoostFor(level amount.Amount) amount.Amount {
	boost := amount.One
	n := level.Int64()
	if n > LevelCeiling {
		n = LevelCeiling
	}
	for i := int64(2); i <= n; i++ {
		boost = boost.Mul(amount.FromInt(i))
	}
	return boost
}

func nonNegative(a amount.Amount) amount.Amount {
	if a.Sign() < 0 {
		return amount.Zero
	}
	return a
}

// recompute refreshes every derived field from the owned counts.
func (g *Game) recompute() {
	s := &g.State
	p := RecalcProduction(ProductionInputs{
		Straws:      s.Straws,
		Cups:        s.Cups,
		WiderStraws: s.WiderStraws,
		BetterCups:  s.BetterCups,
	}, g.Balance)
	s.StrawSPD = p.StrawSPD
	s.CupSPD = p.CupSPD
	s.LevelBoost = LevelBoostFor(s.Level)
	s.SipsPerDrink = p.SipsPerDrink.Mul(s.LevelBoost)
	s.DrinkRate = DrinkRateFor(s.FasterDrinks, g.Balance)
	s.SipsPerSecond = SipsPerSecondFor(s.SipsPerDrink, s.DrinkRate)
}
