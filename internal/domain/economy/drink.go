package economy

import (
	"time"

	"sodaclicker/internal/domain/amount"
)

var hundred = amount.FromInt(100)

type TickResult struct {
	DrinkCompleted  bool          `json:"drink_completed"`
	Credited        amount.Amount `json:"credited"`
	ProgressPercent amount.Amount `json:"progress_percent"`
	AutosaveDue     bool          `json:"autosave_due"`
	Sips            amount.Amount `json:"sips"`
}

// Progress is the percent of the current drink cycle elapsed at now, clamped
// to [0, 100].
func (g *Game) Progress(now time.Time) amount.Amount {
	s := &g.State
	rate := s.DrinkRate.Milliseconds()
	if rate <= 0 {
		return hundred
	}
	elapsed := stamp(now).Sub(s.LastDrinkTime).Milliseconds()
	if elapsed <= 0 {
		return amount.Zero
	}
	if elapsed >= rate {
		return hundred
	}
	return amount.FromInt(elapsed).Mul(hundred).Div(amount.FromInt(rate))
}

// Tick advances the drink cycle to now and credits at most one drink.
// On completion lastDrinkTime is reset to now rather than advanced by one
// drink rate, so dropped frames are not caught up.
func (g *Game) Tick(now time.Time) TickResult {
	now = stamp(now)
	s := &g.State
	progress := g.Progress(now)
	out := TickResult{ProgressPercent: progress, Credited: amount.Zero}

	if progress.GTE(hundred) {
		credit := nonNegative(s.SipsPerDrink)
		s.Sips = s.Sips.Add(credit)
		s.TotalSipsEarned = s.TotalSipsEarned.Add(credit)
		s.LastDrinkTime = now
		s.DrinkProgress = amount.Zero
		if s.SipsPerSecond.GT(s.HighestSipsPerSecond) {
			s.HighestSipsPerSecond = s.SipsPerSecond
		}
		out.DrinkCompleted = true
		out.Credited = credit
		if g.Balance.Autosave.Mode == AutosaveDrinks {
			s.AutosaveCounter++
		}
	} else {
		s.DrinkProgress = progress
	}

	if g.Balance.Autosave.Mode == AutosaveSeconds {
		g.countSeconds(now)
	}
	if g.Balance.Autosave.Interval > 0 && s.AutosaveCounter >= g.Balance.Autosave.Interval {
		out.AutosaveDue = true
		s.AutosaveCounter = 0
	}
	out.Sips = s.Sips
	return out
}

// countSeconds adds whole elapsed seconds to the autosave counter and keeps
// the remainder for the next tick.
func (g *Game) countSeconds(now time.Time) {
	s := &g.State
	if s.autosaveMark.IsZero() || now.Before(s.autosaveMark) {
		s.autosaveMark = now
		return
	}
	secs := int(now.Sub(s.autosaveMark) / time.Second)
	if secs <= 0 {
		return
	}
	s.AutosaveCounter += secs
	s.autosaveMark = s.autosaveMark.Add(time.Duration(secs) * time.Second)
}
