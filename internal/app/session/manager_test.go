package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSaves struct {
	mu       sync.Mutex
	recs     map[string]ports.SaveRecord
	failGets int
	gets     int
	saves    int
}

func newFakeSaves() *fakeSaves { return &fakeSaves{recs: map[string]ports.SaveRecord{}} }

func (f *fakeSaves) GetByPlayerID(_ context.Context, id string) (ports.SaveRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGets > 0 {
		f.failGets--
		return ports.SaveRecord{}, errors.New("connection refused")
	}
	rec, ok := f.recs[id]
	if !ok {
		return ports.SaveRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSaves) SaveWithVersion(_ context.Context, rec ports.SaveRecord, expected int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.recs[rec.PlayerID]
	if (!ok && expected != 0) || (ok && cur.Version != expected) {
		return ports.ErrConflict
	}
	f.saves++
	f.recs[rec.PlayerID] = rec
	return nil
}

type stopCounter struct{ stops int }

func (s *stopCounter) Stop() { s.stops++ }

func newTestManager(saves ports.SaveRepository) *Manager {
	m := NewManager(economy.DefaultBalance(), saves)
	m.Now = func() time.Time { return t0 }
	m.LoadBackoff = time.Millisecond
	return m
}

func TestOpenMissingSaveStartsFreshGame(t *testing.T) {
	m := newTestManager(newFakeSaves())
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Version())
	assert.False(t, s.Degraded())
	s.View(func(g *economy.Game) {
		assert.True(t, g.State.Sips.IsZero())
		assert.True(t, g.State.Level.Equal(amount.One))
	})
}

func TestOpenRejectsBlankPlayer(t *testing.T) {
	m := newTestManager(newFakeSaves())
	_, err := m.Open(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestOpenRetriesThenLoads(t *testing.T) {
	saves := newFakeSaves()
	g := economy.NewGame(economy.DefaultBalance(), t0)
	g.State.Sips = amount.FromInt(42)
	saves.recs["p1"] = ports.SaveRecord{PlayerID: "p1", Snapshot: g.Snapshot(), Version: 7}
	saves.failGets = 2

	m := newTestManager(saves)
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, saves.gets)
	assert.Equal(t, int64(7), s.Version())
	s.View(func(g *economy.Game) { assert.True(t, g.State.Sips.Equal(amount.FromInt(42))) })
}

func TestOpenGivesUpAfterBoundedAttempts(t *testing.T) {
	saves := newFakeSaves()
	saves.failGets = 100
	m := newTestManager(saves)

	start := time.Now()
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, DefaultLoadAttempts, saves.gets)
	assert.True(t, s.Degraded())
	s.View(func(g *economy.Game) { assert.True(t, g.State.Sips.IsZero()) })
}

func TestOpenHonorsCanceledContext(t *testing.T) {
	saves := newFakeSaves()
	saves.failGets = 100
	m := newTestManager(saves)
	m.LoadBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := m.Open(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, saves.gets)
	assert.True(t, s.Degraded())
}

func TestOpenReturnsSameSession(t *testing.T) {
	m := newTestManager(newFakeSaves())
	opened := 0
	m.OnOpen = func(*Session) { opened++ }
	a, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	b, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, opened)
}

func TestSaveAdvancesVersionAndStampsSaveTime(t *testing.T) {
	saves := newFakeSaves()
	m := newTestManager(saves)
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)

	snap, err := m.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, economy.MillisOf(t0), snap.LastSaveTime)
	_, err = m.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Version())
	assert.Equal(t, int64(2), saves.recs["p1"].Version)
}

func TestSaveRecoversFromForeignWrite(t *testing.T) {
	saves := newFakeSaves()
	m := newTestManager(saves)
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	saves.recs["p1"] = ports.SaveRecord{PlayerID: "p1", Version: 5}

	_, err = m.Save(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(6), s.Version())
}

func TestDegradedSessionDoesNotOverwriteExistingSave(t *testing.T) {
	saves := newFakeSaves()
	saves.failGets = DefaultLoadAttempts
	saves.recs["p1"] = ports.SaveRecord{PlayerID: "p1", Version: 3}
	m := newTestManager(saves)
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, s.Degraded())

	_, err = m.Save(context.Background(), s)
	assert.ErrorIs(t, err, ports.ErrConflict)
	assert.Equal(t, int64(3), saves.recs["p1"].Version)
}

func TestCloseStopsLoopAndSaves(t *testing.T) {
	saves := newFakeSaves()
	m := newTestManager(saves)
	loop := &stopCounter{}
	m.OnOpen = func(s *Session) { s.AttachLoop(loop) }

	_, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	require.NoError(t, m.CloseAll(context.Background()))
	assert.Equal(t, 1, loop.stops)
	assert.Equal(t, 1, saves.saves)
	_, ok := m.Get("p1")
	assert.False(t, ok)
}

func TestAttachLoopStopsPrevious(t *testing.T) {
	s := newSession("p1", economy.NewGame(economy.DefaultBalance(), t0), 0, false)
	first, second := &stopCounter{}, &stopCounter{}
	s.AttachLoop(first)
	s.AttachLoop(second)
	assert.Equal(t, 1, first.stops)
	assert.Equal(t, 0, second.stops)
}

func TestCloseIdleStopsLoopAndSavesOnlyIdleSessions(t *testing.T) {
	saves := newFakeSaves()
	m := newTestManager(saves)
	now := t0
	m.Now = func() time.Time { return now }
	m.IdleTTL = time.Minute
	loops := map[string]*stopCounter{}
	m.OnOpen = func(s *Session) {
		loops[s.PlayerID] = &stopCounter{}
		s.AttachLoop(loops[s.PlayerID])
	}

	idle, err := m.Open(context.Background(), "idle")
	require.NoError(t, err)
	require.NoError(t, idle.Do(func(g *economy.Game) error {
		g.State.Sips = amount.FromInt(42)
		return nil
	}))
	_, err = m.Open(context.Background(), "busy")
	require.NoError(t, err)

	now = t0.Add(50 * time.Second)
	_, err = m.Open(context.Background(), "busy")
	require.NoError(t, err)

	now = t0.Add(90 * time.Second)
	closed, err := m.CloseIdle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"idle"}, closed)
	assert.Equal(t, 1, loops["idle"].stops)
	assert.Equal(t, 0, loops["busy"].stops)
	assert.Equal(t, 1, m.Len())

	rec, ok := saves.recs["idle"]
	require.True(t, ok)
	assert.True(t, rec.Snapshot.Sips.Equal(amount.FromInt(42)))
	_, ok = saves.recs["busy"]
	assert.False(t, ok)

	reopened, err := m.Open(context.Background(), "idle")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reopened.Version())
	reopened.View(func(g *economy.Game) { assert.True(t, g.State.Sips.Equal(amount.FromInt(42))) })
}

func TestCloseIdleDisabledWithoutTTL(t *testing.T) {
	m := newTestManager(newFakeSaves())
	_, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	m.Now = func() time.Time { return t0.Add(24 * time.Hour) }

	closed, err := m.CloseIdle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, closed)
	assert.Equal(t, 1, m.Len())
}

func TestCloseUnknownPlayerIsNoop(t *testing.T) {
	saves := newFakeSaves()
	m := newTestManager(saves)
	require.NoError(t, m.Close(context.Background(), "nobody"))
	assert.Equal(t, 0, saves.saves)
}
