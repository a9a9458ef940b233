package economy

import (
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"testing"
	"time"

	"sodaclicker/internal/domain/amount"
)

func roundTrip(t *testing.T, g *Game, now time.Time) *Game {
	t.Helper()
	raw, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	snap, err := ParseSnapshot(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	loaded, _ := LoadGame(g.Balance, snap, now)
	return loaded
}

func TestSnapshotRoundTripFreshGame(t *testing.T) {
	g := newTestGame(t)
	loaded := roundTrip(t, g, t0.Add(time.Hour))
	if snapshotJSON(t, loaded.Snapshot()) != snapshotJSON(t, g.Snapshot()) {
		t.Fatalf("round trip mismatch:\n%s\n%s", snapshotJSON(t, loaded.Snapshot()), snapshotJSON(t, g.Snapshot()))
	}
	if !loaded.State.SipsPerDrink.Equal(g.State.SipsPerDrink) || loaded.State.DrinkRate != g.State.DrinkRate {
		t.Fatalf("derived fields differ: %+v vs %+v", loaded.State, g.State)
	}
}

func TestSnapshotRoundTripLargeValues(t *testing.T) {
	g := newTestGame(t)
	g.State.Sips = amount.MustParse("1e30")
	for _, id := range []UpgradeID{UpgradeStraw, UpgradeCup, UpgradeWiderStraws, UpgradeLevelUp, UpgradeLevelUp, UpgradeFasterDrinks, UpgradeSuction} {
		if out, err := g.Purchase(id, t0); err != nil || !out.Success {
			t.Fatalf("purchase %s: %+v err=%v", id, out, err)
		}
	}
	g.State.Sips = amount.MustParse("123456789012345678901234567.125")
	g.State.TotalSipsEarned = amount.MustParse("9.87e45")
	g.CreditClick(Click{At: t0.Add(3 * time.Second)}, RollerFunc(func() float64 { return 1 }))
	g.Tick(t0.Add(10 * time.Second))
	g.Tick(t0.Add(11 * time.Second))
	g.MarkSaved(t0.Add(12 * time.Second))

	loaded := roundTrip(t, g, t0.Add(time.Hour))
	want, got := g.Snapshot(), loaded.Snapshot()
	if snapshotJSON(t, got) != snapshotJSON(t, want) {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", snapshotJSON(t, got), snapshotJSON(t, want))
	}
	if !loaded.State.Sips.Equal(g.State.Sips) {
		t.Fatalf("sips = %s, want %s", loaded.State.Sips, g.State.Sips)
	}
	if !loaded.State.SipsPerDrink.Equal(g.State.SipsPerDrink) {
		t.Fatalf("sips per drink = %s, want %s", loaded.State.SipsPerDrink, g.State.SipsPerDrink)
	}
	if !loaded.State.LevelBoost.Equal(amount.FromInt(6)) {
		t.Fatalf("level boost = %s, want 6", loaded.State.LevelBoost)
	}
	if !loaded.State.LastSaveTime.Equal(t0.Add(12 * time.Second)) {
		t.Fatalf("last save time = %v", loaded.State.LastSaveTime)
	}
}

func TestEmptySnapshotLoadsFreshGame(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	loaded, _ := LoadGame(DefaultBalance(), snap, t0)
	fresh := NewGame(DefaultBalance(), t0)
	got, want := snapshotJSON(t, loaded.Snapshot()), snapshotJSON(t, fresh.Snapshot())
	if got != want {
		t.Fatalf("empty load differs from fresh:\n got %s\nwant %s", got, want)
	}
	if !loaded.State.SipsPerDrink.Equal(fresh.State.SipsPerDrink) {
		t.Fatalf("sips per drink = %s", loaded.State.SipsPerDrink)
	}
}

func TestMalformedFieldsDefaultIndependently(t *testing.T) {
	raw := []byte(`{
		"sips": "12.5",
		"straws": "lots",
		"cups": {"n": 2},
		"level": -3,
		"criticalClickChance": null,
		"drinkProgress": 250,
		"lastDrinkTime": "yesterday",
		"gameStartDate": "2026-01-02T03:04:05Z",
		"autosaveCounter": "x",
		"unknownField": [1, 2, 3]
	}`)
	snap, err := ParseSnapshot(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, repaired := LoadGame(DefaultBalance(), snap, t0)
	s := g.State
	if !s.Sips.Equal(amount.MustParse("12.5")) {
		t.Fatalf("sips = %s", s.Sips)
	}
	if !s.Straws.IsZero() || !s.Cups.IsZero() {
		t.Fatalf("straws=%s cups=%s, want 0", s.Straws, s.Cups)
	}
	if !s.Level.Equal(amount.One) {
		t.Fatalf("level = %s, want 1", s.Level)
	}
	if !s.CriticalClickChance.Equal(amount.MustParse("0.001")) {
		t.Fatalf("crit chance = %s", s.CriticalClickChance)
	}
	if !s.DrinkProgress.Equal(amount.FromInt(100)) {
		t.Fatalf("drink progress = %s, want clamp to 100", s.DrinkProgress)
	}
	if !s.LastDrinkTime.Equal(t0) {
		t.Fatalf("last drink time = %v, want now", s.LastDrinkTime)
	}
	if !s.GameStartDate.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("game start = %v", s.GameStartDate)
	}
	if len(repaired) == 0 {
		t.Fatal("expected repaired fields to be reported")
	}
}

func TestParseSnapshotRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1]`, `"save"`, `{broken`} {
		if _, err := ParseSnapshot([]byte(raw)); !errors.Is(err, ErrMalformedSnapshot) {
			t.Fatalf("ParseSnapshot(%q) err = %v, want ErrMalformedSnapshot", raw, err)
		}
	}
}

func TestMillisAcceptsNumbersAndStrings(t *testing.T) {
	var m Millis
	for raw, want := range map[string]Millis{
		`1700000000000`:            1700000000000,
		`"1700000000000"`:          1700000000000,
		`"2023-11-14T22:13:20Z"`:   1700000000000,
		`-5`:                       0,
		`true`:                     0,
		`"2023-11-14T22:13:20.5Z"`: 1700000000500,
	} {
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if m != want {
			t.Fatalf("Millis(%s) = %d, want %d", raw, m, want)
		}
	}
}

func TestHugeLevelLoadsAtMaxLevel(t *testing.T) {
	b := DefaultBalance()
	for _, level := range []string{`"2000000"`, `"1e18"`, `1e300`} {
		snap, err := ParseSnapshot([]byte(`{"level":` + level + `}`))
		if err != nil {
			t.Fatalf("parse level %s: %v", level, err)
		}
		start := time.Now()
		g, repaired := LoadGame(b, snap, t0)
		if d := time.Since(start); d > time.Second {
			t.Fatalf("load level %s took %v", level, d)
		}
		if !g.State.Level.Equal(amount.FromInt(DefaultMaxLevel)) {
			t.Fatalf("level %s loaded as %s", level, g.State.Level)
		}
		if !slices.Contains(repaired, "level") {
			t.Fatalf("level %s not reported as repaired: %v", level, repaired)
		}
		if !g.State.LevelBoost.Equal(LevelBoostFor(amount.FromInt(DefaultMaxLevel))) {
			t.Fatalf("level boost = %s", g.State.LevelBoost)
		}
	}
}

func TestLevelUpStopsAtMaxLevel(t *testing.T) {
	b := DefaultBalance()
	b.MaxLevel = 3
	g := NewGame(b, t0)
	g.State.Sips = amount.MustParse("1e20")
	for i := 0; i < 2; i++ {
		if out, err := g.Purchase(UpgradeLevelUp, t0); err != nil || !out.Success {
			t.Fatalf("level up %d: %+v err=%v", i, out, err)
		}
	}
	sips := g.State.Sips
	out, err := g.Purchase(UpgradeLevelUp, t0)
	if err != nil || out.Success {
		t.Fatalf("level up past max: %+v err=%v", out, err)
	}
	if !g.State.Level.Equal(amount.FromInt(3)) || !g.State.Sips.Equal(sips) {
		t.Fatalf("state changed: level=%s sips=%s", g.State.Level, g.State.Sips)
	}
	if ok, _ := g.CanAfford(UpgradeLevelUp); ok {
		t.Fatalf("level up still affordable at max level")
	}
	for _, o := range g.Offers() {
		if o.Upgrade == UpgradeLevelUp && (!o.Maxed || o.Affordable) {
			t.Fatalf("level up offer = %+v", o)
		}
	}
}

func TestHugeSipsTickStaysBounded(t *testing.T) {
	b := DefaultBalance()
	b.BaseSipsPerDrink = 1.25
	raw := []byte(`{"sips":"1e9000","lastDrinkTime":` + strconv.FormatInt(t0.UnixMilli(), 10) + `}`)
	snap, err := ParseSnapshot(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, _ := LoadGame(b, snap, t0)

	start := time.Now()
	res := g.Tick(t0.Add(6 * time.Second))
	if d := time.Since(start); d > time.Second {
		t.Fatalf("tick took %v", d)
	}
	if !res.DrinkCompleted {
		t.Fatalf("drink not completed: %+v", res)
	}
	if n := len(g.State.Sips.String()); n > amount.MaxExponent+2 {
		t.Fatalf("sips string has %d chars", n)
	}
	if !g.State.Sips.Equal(amount.MustParse("1e9000")) {
		t.Fatalf("sips drifted to %s", g.State.Sips.String()[:20])
	}

	snap, err = ParseSnapshot([]byte(`{"sips":"1e5000000"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g, _ := LoadGame(b, snap, t0); !g.State.Sips.IsZero() {
		t.Fatalf("out-of-range sips loaded as a value with %d chars", len(g.State.Sips.String()))
	}
}
