package economy

import (
	"math/rand/v2"
	"time"

	"sodaclicker/internal/domain/amount"
)

// Roller yields uniform values in [0, 1) for critical hit rolls.
type Roller interface {
	Float64() float64
}

type RollerFunc func() float64

func (f RollerFunc) Float64() float64 { return f() }

// DefaultRoller draws from the global math/rand/v2 source.
var DefaultRoller Roller = RollerFunc(rand.Float64)

type Click struct {
	At time.Time `json:"at"`
	X  float64   `json:"x"`
	Y  float64   `json:"y"`
}

type ClickResult struct {
	Value       amount.Amount `json:"value"`
	Critical    bool          `json:"critical"`
	Sips        amount.Amount `json:"sips"`
	TotalClicks amount.Amount `json:"total_clicks"`
	// X and Y echo the click position for feedback placement.
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Events []DomainEvent `json:"events,omitempty"`
}

// ClickValue is the non-critical worth of one click.
func (g *Game) ClickValue() amount.Amount {
	return amount.FromFloat(g.Balance.BaseClickValue).Add(g.State.SuctionClickBonus)
}

// CreditClick credits one manual click. A nil roller uses DefaultRoller.
func (g *Game) CreditClick(c Click, r Roller) ClickResult {
	if r == nil {
		r = DefaultRoller
	}
	s := &g.State
	value := g.ClickValue()
	critical := false
	if s.CriticalClickChance.Sign() > 0 && amount.FromFloat(r.Float64()).LT(s.CriticalClickChance) {
		critical = true
		value = value.Mul(s.CriticalClickMultiplier)
	}

	s.Sips = s.Sips.Add(value)
	s.TotalSipsEarned = s.TotalSipsEarned.Add(value)
	s.TotalClicks = s.TotalClicks.Add(amount.One)
	if !c.At.IsZero() {
		s.LastClickTime = stamp(c.At)
	}

	out := ClickResult{
		Value:    value,
		Critical: critical,
		X:        c.X,
		Y:        c.Y,
	}
	if critical {
		s.TotalCriticalClicks = s.TotalCriticalClicks.Add(amount.One)
		out.Events = append(out.Events, DomainEvent{
			Type:       EventCriticalClick,
			OccurredAt: s.LastClickTime,
			Payload: map[string]any{
				"value":      value.String(),
				"multiplier": s.CriticalClickMultiplier.String(),
			},
		})
	}
	out.Sips = s.Sips
	out.TotalClicks = s.TotalClicks
	return out
}
