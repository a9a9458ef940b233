package economy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sodaclicker/internal/domain/amount"
)

const SnapshotVersion = 1

var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Millis is a unix millisecond timestamp. Zero means unset. Decoding accepts
// numbers, numeric strings and RFC 3339 strings; anything else decodes to zero.
type Millis int64

func MillisOf(t time.Time) Millis {
	if t.IsZero() {
		return 0
	}
	return Millis(t.UnixMilli())
}

func (m Millis) Time() time.Time {
	if m <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m)).UTC()
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	*m = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			*m = MillisOf(t)
			return nil
		}
		raw = s
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 && f < 1<<53 {
		*m = Millis(f)
	}
	return nil
}

// Snapshot is the flat persisted form of a State. Field names follow the save
// format of the browser client so existing saves import unchanged.
type Snapshot struct {
	Version int `json:"version"`

	Sips                    amount.Amount `json:"sips"`
	Straws                  amount.Amount `json:"straws"`
	Cups                    amount.Amount `json:"cups"`
	Suctions                amount.Amount `json:"suctions"`
	FasterDrinks            amount.Amount `json:"fasterDrinks"`
	WiderStraws             amount.Amount `json:"widerStraws"`
	BetterCups              amount.Amount `json:"betterCups"`
	CriticalClickChance     amount.Amount `json:"criticalClickChance"`
	CriticalClickMultiplier amount.Amount `json:"criticalClickMultiplier"`
	CriticalClicks          amount.Amount `json:"criticalClicks"`
	CriticalClickUpCounter  amount.Amount `json:"criticalClickUpCounter"`
	StrawUpCounter          amount.Amount `json:"strawUpCounter"`
	CupUpCounter            amount.Amount `json:"cupUpCounter"`
	SuctionClickBonus       amount.Amount `json:"suctionClickBonus"`
	Level                   amount.Amount `json:"level"`

	TotalSipsEarned      amount.Amount `json:"totalSipsEarned"`
	TotalClicks          amount.Amount `json:"totalClicks"`
	TotalCriticalClicks  amount.Amount `json:"totalCriticalClicks"`
	HighestSipsPerSecond amount.Amount `json:"highestSipsPerSecond"`

	GameStartDate Millis        `json:"gameStartDate"`
	LastClickTime Millis        `json:"lastClickTime"`
	LastDrinkTime Millis        `json:"lastDrinkTime"`
	DrinkProgress amount.Amount `json:"drinkProgress"`
	LastSaveTime  Millis        `json:"lastSaveTime"`

	AutosaveCounter int `json:"autosaveCounter"`
}

// ParseSnapshot decodes a save. Only a document that is not a JSON object is
// rejected; bad fields decode to zero and are repaired by Load.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Snapshot{}, ErrMalformedSnapshot
	}
	// Decode field by field so a type mismatch on one field cannot abort the rest.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if v, ok := fields["autosaveCounter"]; ok {
		var n float64
		if json.Unmarshal(v, &n) == nil && n > 0 && n < 1<<31 {
			snap.AutosaveCounter = int(n)
		}
		delete(fields, "autosaveCounter")
	}
	if v, ok := fields["version"]; ok {
		var n float64
		if json.Unmarshal(v, &n) == nil && n > 0 && n < 1<<31 {
			snap.Version = int(n)
		}
		delete(fields, "version")
	}
	rest, err := json.Marshal(fields)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := json.Unmarshal(rest, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return snap, nil
}

func (g *Game) Snapshot() Snapshot {
	s := g.State
	return Snapshot{
		Version:                 SnapshotVersion,
		Sips:                    s.Sips,
		Straws:                  s.Straws,
		Cups:                    s.Cups,
		Suctions:                s.Suctions,
		FasterDrinks:            s.FasterDrinks,
		WiderStraws:             s.WiderStraws,
		BetterCups:              s.BetterCups,
		CriticalClickChance:     s.CriticalClickChance,
		CriticalClickMultiplier: s.CriticalClickMultiplier,
		CriticalClicks:          s.CriticalClicks,
		CriticalClickUpCounter:  s.CriticalClickUpCounter,
		StrawUpCounter:          s.StrawUpCounter,
		CupUpCounter:            s.CupUpCounter,
		SuctionClickBonus:       s.SuctionClickBonus,
		Level:                   s.Level,
		TotalSipsEarned:         s.TotalSipsEarned,
		TotalClicks:             s.TotalClicks,
		TotalCriticalClicks:     s.TotalCriticalClicks,
		HighestSipsPerSecond:    s.HighestSipsPerSecond,
		GameStartDate:           MillisOf(s.GameStartDate),
		LastClickTime:           MillisOf(s.LastClickTime),
		LastDrinkTime:           MillisOf(s.LastDrinkTime),
		DrinkProgress:           s.DrinkProgress,
		LastSaveTime:            MillisOf(s.LastSaveTime),
		AutosaveCounter:         s.AutosaveCounter,
	}
}

// MarkSaved stamps the save time and returns the snapshot to persist.
func (g *Game) MarkSaved(now time.Time) Snapshot {
	g.State.LastSaveTime = stamp(now)
	return g.Snapshot()
}

// Load replaces the whole state with snap. Each field is repaired on its own:
// negatives become zero, values below their starting default take the
// default, a level above MaxLevel drops to it, and missing clocks start at now. It reports the names of the
// fields it repaired.
func (g *Game) Load(snap Snapshot, now time.Time) []string {
	fresh := newState(g.Balance, now)
	var repaired []string
	count := func(name string, v amount.Amount) amount.Amount {
		if v.Sign() < 0 {
			repaired = append(repaired, name)
			return amount.Zero
		}
		return v
	}
	atMost := func(name string, v, ceiling amount.Amount) amount.Amount {
		if v.GT(ceiling) {
			repaired = append(repaired, name)
			return ceiling
		}
		return v
	}
	atLeast := func(name string, v, floor amount.Amount) amount.Amount {
		if v.LT(floor) {
			if !v.IsZero() {
				repaired = append(repaired, name)
			}
			return floor
		}
		return v
	}
	clock := func(name string, m Millis, fallback time.Time) time.Time {
		if m <= 0 {
			if !fallback.IsZero() {
				repaired = append(repaired, name)
			}
			return fallback
		}
		return m.Time()
	}

	s := State{
		Sips:                    count("sips", snap.Sips),
		Straws:                  count("straws", snap.Straws).Floor(),
		Cups:                    count("cups", snap.Cups).Floor(),
		Suctions:                count("suctions", snap.Suctions).Floor(),
		FasterDrinks:            count("fasterDrinks", snap.FasterDrinks).Floor(),
		WiderStraws:             count("widerStraws", snap.WiderStraws).Floor(),
		BetterCups:              count("betterCups", snap.BetterCups).Floor(),
		CriticalClicks:          count("criticalClicks", snap.CriticalClicks).Floor(),
		StrawUpCounter:          atLeast("strawUpCounter", snap.StrawUpCounter.Floor(), fresh.StrawUpCounter),
		CupUpCounter:            atLeast("cupUpCounter", snap.CupUpCounter.Floor(), fresh.CupUpCounter),
		CriticalClickUpCounter:  atLeast("criticalClickUpCounter", snap.CriticalClickUpCounter.Floor(), fresh.CriticalClickUpCounter),
		CriticalClickChance:     amount.Min(atLeast("criticalClickChance", snap.CriticalClickChance, fresh.CriticalClickChance), amount.One),
		CriticalClickMultiplier: atLeast("criticalClickMultiplier", snap.CriticalClickMultiplier, fresh.CriticalClickMultiplier),
		SuctionClickBonus:       count("suctionClickBonus", snap.SuctionClickBonus),
		Level:                   atMost("level", atLeast("level", snap.Level.Floor(), fresh.Level), g.Balance.levelCap()),
		TotalSipsEarned:         count("totalSipsEarned", snap.TotalSipsEarned),
		TotalClicks:             count("totalClicks", snap.TotalClicks),
		TotalCriticalClicks:     count("totalCriticalClicks", snap.TotalCriticalClicks),
		HighestSipsPerSecond:    count("highestSipsPerSecond", snap.HighestSipsPerSecond),
		GameStartDate:           clock("gameStartDate", snap.GameStartDate, fresh.GameStartDate),
		LastClickTime:           snap.LastClickTime.Time(),
		LastDrinkTime:           clock("lastDrinkTime", snap.LastDrinkTime, fresh.LastDrinkTime),
		LastSaveTime:            snap.LastSaveTime.Time(),
		DrinkProgress:           amount.Min(count("drinkProgress", snap.DrinkProgress), hundred),
		AutosaveCounter:         snap.AutosaveCounter,
	}
	if s.AutosaveCounter < 0 {
		s.AutosaveCounter = 0
	}
	g.State = s
	g.recompute()
	return repaired
}

// LoadGame builds a game from a persisted snapshot.
func LoadGame(b Balance, snap Snapshot, now time.Time) (*Game, []string) {
	g := &Game{Balance: b}
	repaired := g.Load(snap, now)
	return g, repaired
}
