package economy

import (
	"errors"

	"sodaclicker/internal/domain/amount"
)

var ErrUnknownUpgrade = errors.New("unknown upgrade")

type UpgradeID string

const (
	UpgradeStraw                   UpgradeID = "straw"
	UpgradeCup                     UpgradeID = "cup"
	UpgradeSuction                 UpgradeID = "suction"
	UpgradeFasterDrinks            UpgradeID = "faster_drinks"
	UpgradeWiderStraws             UpgradeID = "wider_straws"
	UpgradeBetterCups              UpgradeID = "better_cups"
	UpgradeCriticalClickChance     UpgradeID = "critical_click_chance"
	UpgradeCriticalClickMultiplier UpgradeID = "critical_click_multiplier"
	UpgradeLevelUp                 UpgradeID = "level_up"
)

type CurveKind string

const (
	CurveExponential CurveKind = "exponential"
	CurveLinear      CurveKind = "linear"
	CurveLevel       CurveKind = "level"
)

// maxCostExponent keeps scaling^owned inside the decimal exponent range.
// Reaching it would take more sips than that range can hold.
const maxCostExponent = 10_000_000

type upgradeSpec struct {
	ID    UpgradeID
	Curve CurveKind
	// owned is the number of units bought so far.
	owned func(s *State) amount.Amount
	cost  func(b Balance, s *State) amount.Amount
	apply func(g *Game)
}

func upgradeRegistry() map[UpgradeID]upgradeSpec {
	return map[UpgradeID]upgradeSpec{
		UpgradeStraw: {
			ID: UpgradeStraw, Curve: CurveExponential,
			owned: func(s *State) amount.Amount { return s.Straws },
			cost:  func(b Balance, s *State) amount.Amount { return exponentialCost(b.Straw, s.Straws) },
			apply: func(g *Game) {
				g.State.Straws = g.State.Straws.Add(amount.One)
				g.recompute()
			},
		},
		UpgradeCup: {
			ID: UpgradeCup, Curve: CurveExponential,
			owned: func(s *State) amount.Amount { return s.Cups },
			cost:  func(b Balance, s *State) amount.Amount { return exponentialCost(b.Cup, s.Cups) },
			apply: func(g *Game) {
				g.State.Cups = g.State.Cups.Add(amount.One)
				g.recompute()
			},
		},
		UpgradeSuction: {
			ID: UpgradeSuction, Curve: CurveExponential,
			owned: func(s *State) amount.Amount { return s.Suctions },
			cost:  func(b Balance, s *State) amount.Amount { return exponentialCost(b.Suction, s.Suctions) },
			apply: func(g *Game) {
				g.State.Suctions = g.State.Suctions.Add(amount.One)
				g.State.SuctionClickBonus = g.State.SuctionClickBonus.Add(amount.FromFloat(g.Balance.SuctionClickBonusPerLevel))
			},
		},
		UpgradeFasterDrinks: {
			ID: UpgradeFasterDrinks, Curve: CurveExponential,
			owned: func(s *State) amount.Amount { return s.FasterDrinks },
			cost:  func(b Balance, s *State) amount.Amount { return exponentialCost(b.FasterDrinks, s.FasterDrinks) },
			apply: func(g *Game) {
				g.State.FasterDrinks = g.State.FasterDrinks.Add(amount.One)
				g.recompute()
			},
		},
		UpgradeCriticalClickChance: {
			ID: UpgradeCriticalClickChance, Curve: CurveExponential,
			owned: func(s *State) amount.Amount { return s.CriticalClicks },
			cost: func(b Balance, s *State) amount.Amount {
				return exponentialCost(b.CriticalClickChance, s.CriticalClicks)
			},
			apply: func(g *Game) {
				s := &g.State
				s.CriticalClicks = s.CriticalClicks.Add(amount.One)
				s.CriticalClickChance = amount.Min(
					s.CriticalClickChance.Add(amount.FromFloat(g.Balance.CriticalChancePerLevel)),
					amount.One,
				)
			},
		},
		UpgradeWiderStraws: {
			ID: UpgradeWiderStraws, Curve: CurveLinear,
			owned: func(s *State) amount.Amount { return s.WiderStraws },
			cost: func(b Balance, s *State) amount.Amount {
				return amount.FromFloat(b.WiderStrawsBaseCost).Mul(counter(s.StrawUpCounter))
			},
			apply: func(g *Game) {
				s := &g.State
				s.WiderStraws = s.WiderStraws.Add(amount.One)
				s.StrawUpCounter = counter(s.StrawUpCounter).Add(amount.One)
				g.recompute()
			},
		},
		UpgradeBetterCups: {
			ID: UpgradeBetterCups, Curve: CurveLinear,
			owned: func(s *State) amount.Amount { return s.BetterCups },
			cost: func(b Balance, s *State) amount.Amount {
				return amount.FromFloat(b.BetterCupsBaseCost).Mul(counter(s.CupUpCounter))
			},
			apply: func(g *Game) {
				s := &g.State
				s.BetterCups = s.BetterCups.Add(amount.One)
				s.CupUpCounter = counter(s.CupUpCounter).Add(amount.One)
				g.recompute()
			},
		},
		UpgradeCriticalClickMultiplier: {
			ID: UpgradeCriticalClickMultiplier, Curve: CurveLinear,
			owned: func(s *State) amount.Amount { return counter(s.CriticalClickUpCounter).Sub(amount.One) },
			cost: func(b Balance, s *State) amount.Amount {
				return amount.FromFloat(b.CriticalMultiplierBaseCost).Mul(counter(s.CriticalClickUpCounter))
			},
			apply: func(g *Game) {
				s := &g.State
				s.CriticalClickUpCounter = counter(s.CriticalClickUpCounter).Add(amount.One)
				s.CriticalClickMultiplier = s.CriticalClickMultiplier.Add(amount.FromFloat(g.Balance.CriticalMultiplierPerLevel))
			},
		},
		UpgradeLevelUp: {
			ID: UpgradeLevelUp, Curve: CurveLevel,
			owned: func(s *State) amount.Amount { return counter(s.Level) },
			cost: func(b Balance, s *State) amount.Amount {
				return amount.FromFloat(b.LevelUpBaseCost).Mul(counter(s.Level))
			},
			// Level up multiplies the current rate instead of recomputing it;
			// LevelBoost keeps the factor for later recomputes.
			apply: func(g *Game) {
				s := &g.State
				s.Level = counter(s.Level).Add(amount.One)
				s.LevelBoost = s.LevelBoost.Mul(s.Level)
				s.SipsPerDrink = s.SipsPerDrink.Mul(s.Level)
				s.SipsPerSecond = SipsPerSecondFor(s.SipsPerDrink, s.DrinkRate)
			},
		},
	}
}

// UpgradeIDs lists every purchasable upgrade in display order.
func UpgradeIDs() []UpgradeID {
	return []UpgradeID{
		UpgradeStraw,
		UpgradeCup,
		UpgradeSuction,
		UpgradeFasterDrinks,
		UpgradeWiderStraws,
		UpgradeBetterCups,
		UpgradeCriticalClickChance,
		UpgradeCriticalClickMultiplier,
		UpgradeLevelUp,
	}
}

func IsKnownUpgrade(id UpgradeID) bool {
	_, ok := upgrades[id]
	return ok
}

// exponentialCost is floor(base * scaling^owned).
func exponentialCost(c CostCurve, owned amount.Amount) amount.Amount {
	n := nonNegative(owned).Int64()
	if n > maxCostExponent {
		n = maxCostExponent
	}
	return amount.FromFloat(c.BaseCost).
		Mul(amount.FromFloat(c.Scaling).Pow(int(n))).
		Floor()
}

// counter treats tier counters and levels below 1 as 1.
func counter(v amount.Amount) amount.Amount {
	return amount.Max(v, amount.One)
}
