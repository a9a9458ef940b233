package economy

import (
	"fmt"
	"time"

	"sodaclicker/internal/domain/amount"
)

var upgrades = upgradeRegistry()

// Game couples a player's State with the Balance it is played under.
// It is not safe for concurrent use.
type Game struct {
	Balance Balance
	State   State
}

func NewGame(b Balance, now time.Time) *Game {
	g := &Game{Balance: b, State: newState(b, now)}
	g.recompute()
	return g
}

type PurchaseResult struct {
	Upgrade      UpgradeID     `json:"upgrade"`
	Success      bool          `json:"success"`
	Cost         amount.Amount `json:"cost"`
	NewCount     amount.Amount `json:"new_count"`
	NextCost     amount.Amount `json:"next_cost"`
	SipsPerDrink amount.Amount `json:"sips_per_drink"`
	Sips         amount.Amount `json:"sips"`
	Events       []DomainEvent `json:"events,omitempty"`
}

type Offer struct {
	Upgrade    UpgradeID     `json:"upgrade"`
	Curve      CurveKind     `json:"curve"`
	Owned      amount.Amount `json:"owned"`
	Cost       amount.Amount `json:"cost"`
	Affordable bool          `json:"affordable"`
	// Maxed is set once no more units can be bought.
	Maxed bool `json:"maxed,omitempty"`
}

func (g *Game) Cost(id UpgradeID) (amount.Amount, error) {
	spec, ok := upgrades[id]
	if !ok {
		return amount.Zero, fmt.Errorf("%w: %q", ErrUnknownUpgrade, id)
	}
	return spec.cost(g.Balance, &g.State), nil
}

func (g *Game) CanAfford(id UpgradeID) (bool, error) {
	cost, err := g.Cost(id)
	if err != nil {
		return false, err
	}
	return g.State.Sips.GTE(cost) && !g.maxed(id), nil
}

// Purchase buys one unit of id. An unaffordable purchase, or a level up at
// MaxLevel, leaves the state untouched and reports Success=false without an
// error.
func (g *Game) Purchase(id UpgradeID, now time.Time) (PurchaseResult, error) {
	spec, ok := upgrades[id]
	if !ok {
		return PurchaseResult{}, fmt.Errorf("%w: %q", ErrUnknownUpgrade, id)
	}
	s := &g.State
	cost := spec.cost(g.Balance, s)
	if s.Sips.LT(cost) || g.maxed(id) {
		return PurchaseResult{
			Upgrade:      id,
			Success:      false,
			Cost:         cost,
			NewCount:     spec.owned(s),
			NextCost:     cost,
			SipsPerDrink: s.SipsPerDrink,
			Sips:         s.Sips,
		}, nil
	}

	levelBefore := s.Level
	s.Sips = s.Sips.Sub(cost)
	spec.apply(g)

	out := PurchaseResult{
		Upgrade:      id,
		Success:      true,
		Cost:         cost,
		NewCount:     spec.owned(s),
		NextCost:     spec.cost(g.Balance, s),
		SipsPerDrink: s.SipsPerDrink,
		Sips:         s.Sips,
	}
	at := stamp(now)
	out.Events = append(out.Events, DomainEvent{
		Type:       EventPurchaseCompleted,
		OccurredAt: at,
		Payload: map[string]any{
			"upgrade":        string(id),
			"cost":           cost.String(),
			"new_count":      out.NewCount.String(),
			"sips_per_drink": s.SipsPerDrink.String(),
		},
	})
	if id == UpgradeLevelUp {
		out.Events = append(out.Events, DomainEvent{
			Type:       EventLevelUp,
			OccurredAt: at,
			Payload: map[string]any{
				"level_before": levelBefore.String(),
				"level_after":  s.Level.String(),
			},
		})
	}
	return out, nil
}

func (g *Game) maxed(id UpgradeID) bool {
	return id == UpgradeLevelUp && counter(g.State.Level).GTE(g.Balance.levelCap())
}

func (g *Game) Offers() []Offer {
	ids := UpgradeIDs()
	out := make([]Offer, 0, len(ids))
	for _, id := range ids {
		spec := upgrades[id]
		cost := spec.cost(g.Balance, &g.State)
		out = append(out, Offer{
			Upgrade:    id,
			Curve:      spec.Curve,
			Owned:      spec.owned(&g.State),
			Cost:       cost,
			Affordable: g.State.Sips.GTE(cost) && !g.maxed(id),
			Maxed:      g.maxed(id),
		})
	}
	return out
}

// Reset discards all progress and starts a fresh game at now.
func (g *Game) Reset(now time.Time) DomainEvent {
	previous := g.State.TotalSipsEarned
	g.State = newState(g.Balance, now)
	g.recompute()
	return DomainEvent{
		Type:       EventGameReset,
		OccurredAt: stamp(now),
		Payload: map[string]any{
			"previous_total_sips_earned": previous.String(),
		},
	}
}

type Stats struct {
	PlayTime             time.Duration `json:"play_time"`
	TotalSipsEarned      amount.Amount `json:"total_sips_earned"`
	TotalClicks          amount.Amount `json:"total_clicks"`
	TotalCriticalClicks  amount.Amount `json:"total_critical_clicks"`
	HighestSipsPerSecond amount.Amount `json:"highest_sips_per_second"`
	AverageSipsPerSecond amount.Amount `json:"average_sips_per_second"`
}

func (g *Game) Stats(now time.Time) Stats {
	s := g.State
	play := stamp(now).Sub(s.GameStartDate)
	if play < 0 {
		play = 0
	}
	avg := amount.Zero
	if secs := int64(play / time.Second); secs > 0 {
		avg = s.TotalSipsEarned.Div(amount.FromInt(secs))
	}
	return Stats{
		PlayTime:             play,
		TotalSipsEarned:      s.TotalSipsEarned,
		TotalClicks:          s.TotalClicks,
		TotalCriticalClicks:  s.TotalCriticalClicks,
		HighestSipsPerSecond: s.HighestSipsPerSecond,
		AverageSipsPerSecond: avg,
	}
}
