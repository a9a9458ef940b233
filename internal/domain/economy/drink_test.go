package economy

import (
	"testing"
	"time"

	"sodaclicker/internal/domain/amount"
)

func fiveSipsPerSecond() Balance {
	b := DefaultBalance()
	b.BaseSipsPerDrink = 5
	b.BaseDrinkRateMs = 1000
	b.MinDrinkRateMs = 500
	return b
}

func TestTickCreditsExactlyOneDrink(t *testing.T) {
	g := NewGame(fiveSipsPerSecond(), t0)
	now := t0.Add(time.Second)

	out := g.Tick(now)
	if !out.DrinkCompleted || !out.Credited.Equal(amount.FromInt(5)) {
		t.Fatalf("unexpected first tick: %+v", out)
	}
	if !g.State.Sips.Equal(amount.FromInt(5)) {
		t.Fatalf("sips = %s, want 5", g.State.Sips)
	}

	again := g.Tick(now)
	if again.DrinkCompleted || !again.Credited.IsZero() {
		t.Fatalf("second tick at same instant credited: %+v", again)
	}
	if !g.State.Sips.Equal(amount.FromInt(5)) {
		t.Fatalf("sips after repeat tick = %s, want 5", g.State.Sips)
	}
}

func TestTickProgressClampedAtHundred(t *testing.T) {
	for _, elapsed := range []time.Duration{time.Second, 1500 * time.Millisecond, time.Hour} {
		g := NewGame(fiveSipsPerSecond(), t0)
		out := g.Tick(t0.Add(elapsed))
		if !out.ProgressPercent.Equal(amount.FromInt(100)) {
			t.Fatalf("progress after %v = %s, want 100", elapsed, out.ProgressPercent)
		}
		// Slow frames never catch up: one credit per tick.
		if !out.Credited.Equal(amount.FromInt(5)) {
			t.Fatalf("credited after %v = %s, want 5", elapsed, out.Credited)
		}
		if !g.State.LastDrinkTime.Equal(t0.Add(elapsed)) {
			t.Fatalf("last drink time = %v, want reset to now", g.State.LastDrinkTime)
		}
	}
}

func TestTickReportsPartialProgress(t *testing.T) {
	g := NewGame(fiveSipsPerSecond(), t0)
	out := g.Tick(t0.Add(250 * time.Millisecond))
	if out.DrinkCompleted || !out.ProgressPercent.Equal(amount.FromInt(25)) {
		t.Fatalf("unexpected partial tick: %+v", out)
	}
	if !g.State.DrinkProgress.Equal(amount.FromInt(25)) {
		t.Fatalf("drink progress = %s", g.State.DrinkProgress)
	}
	if back := g.Tick(t0.Add(-time.Second)); !back.ProgressPercent.IsZero() || back.DrinkCompleted {
		t.Fatalf("tick before last drink: %+v", back)
	}
}

func TestTickTracksHighestRate(t *testing.T) {
	g := NewGame(fiveSipsPerSecond(), t0)
	g.Tick(t0.Add(time.Second))
	if !g.State.HighestSipsPerSecond.Equal(amount.FromInt(5)) {
		t.Fatalf("highest sps = %s, want 5", g.State.HighestSipsPerSecond)
	}
	if !g.State.TotalSipsEarned.Equal(amount.FromInt(5)) {
		t.Fatalf("total earned = %s", g.State.TotalSipsEarned)
	}
}

func TestAutosaveCountsDrinksAndResetsToZero(t *testing.T) {
	b := fiveSipsPerSecond()
	b.Autosave = Autosave{Mode: AutosaveDrinks, Interval: 3}
	g := NewGame(b, t0)

	var due []int
	for i := 1; i <= 7; i++ {
		if g.Tick(t0.Add(time.Duration(i) * time.Second)).AutosaveDue {
			due = append(due, i)
		}
	}
	if len(due) != 2 || due[0] != 3 || due[1] != 6 {
		t.Fatalf("autosave due at %v, want [3 6]", due)
	}
	if g.State.AutosaveCounter != 1 {
		t.Fatalf("counter = %d, want 1", g.State.AutosaveCounter)
	}
}

func TestAutosaveCountsWholeSeconds(t *testing.T) {
	b := fiveSipsPerSecond()
	b.Autosave = Autosave{Mode: AutosaveSeconds, Interval: 2}
	g := NewGame(b, t0)

	g.Tick(t0)
	if g.Tick(t0.Add(1500 * time.Millisecond)).AutosaveDue {
		t.Fatal("autosave due after 1.5s")
	}
	if !g.Tick(t0.Add(2 * time.Second)).AutosaveDue {
		t.Fatal("autosave not due after 2s")
	}
	if g.State.AutosaveCounter != 0 {
		t.Fatalf("counter = %d, want 0 after trigger", g.State.AutosaveCounter)
	}
}
