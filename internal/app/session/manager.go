package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const (
	DefaultLoadAttempts = 3
	DefaultLoadBackoff  = 50 * time.Millisecond
)

var ErrInvalidPlayer = errors.New("invalid player id")

type Manager struct {
	Balance economy.Balance
	Saves   ports.SaveRepository
	Events  ports.EventRepository
	Metrics ports.EconomyMetrics
	Now     func() time.Time

	LoadAttempts int
	LoadBackoff  time.Duration
	// OnOpen runs once for each newly opened session, e.g. to start its drink loop.
	OnOpen func(s *Session)
	// IdleTTL is how long a session may go unopened before CloseIdle closes
	// it. Zero keeps sessions open until Close.
	IdleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	// closing holds players whose final save is in flight; Open waits on it.
	closing map[string]chan struct{}
}

func NewManager(b economy.Balance, saves ports.SaveRepository) *Manager {
	return &Manager{
		Balance:      b,
		Saves:        saves,
		LoadAttempts: DefaultLoadAttempts,
		LoadBackoff:  DefaultLoadBackoff,
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Get returns an already open session.
func (m *Manager) Get(playerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[playerID]
	return s, ok
}

// Open returns the player's session, loading it from storage on first use.
// A missing save starts a fresh game. A store that keeps failing is retried
// a bounded number of times and then also yields a fresh game. Opening a
// player that is being closed waits for its final save first.
func (m *Manager) Open(ctx context.Context, playerID string) (*Session, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrInvalidPlayer
	}
	for {
		m.mu.Lock()
		if s, ok := m.sessions[playerID]; ok {
			m.mu.Unlock()
			s.touch(m.now())
			return s, nil
		}
		done, closing := m.closing[playerID]
		m.mu.Unlock()
		if !closing {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done:
		}
	}

	g, version, degraded := m.load(ctx, playerID)
	s := newSession(playerID, g, version, degraded)
	s.touch(m.now())

	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = map[string]*Session{}
	}
	if existing, ok := m.sessions[playerID]; ok {
		m.mu.Unlock()
		existing.touch(m.now())
		return existing, nil
	}
	m.sessions[playerID] = s
	m.mu.Unlock()

	if m.OnOpen != nil {
		m.OnOpen(s)
	}
	return s, nil
}

func (m *Manager) load(ctx context.Context, playerID string) (*economy.Game, int64, bool) {
	attempts := m.LoadAttempts
	if attempts <= 0 {
		attempts = DefaultLoadAttempts
	}
	backoff := m.LoadBackoff
	if backoff <= 0 {
		backoff = DefaultLoadBackoff
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if m.Saves == nil {
			lastErr = ports.ErrUnavailable
			break
		}
		rec, err := m.Saves.GetByPlayerID(ctx, playerID)
		if err == nil {
			g, repaired := economy.LoadGame(m.Balance, rec.Snapshot, m.now())
			if len(repaired) > 0 {
				hlog.CtxInfof(ctx, "player %s: save repaired fields %v", playerID, repaired)
			}
			return g, rec.Version, false
		}
		if errors.Is(err, ports.ErrNotFound) {
			return economy.NewGame(m.Balance, m.now()), 0, false
		}
		lastErr = err
		hlog.CtxWarnf(ctx, "player %s: load attempt %d/%d failed: %v", playerID, i+1, attempts, err)
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			lastErr = err
			break
		}
		backoff *= 2
	}
	hlog.CtxWarnf(ctx, "player %s: starting from defaults: %v", playerID, lastErr)
	return economy.NewGame(m.Balance, m.now()), 0, true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Save persists the current state. Snapshots are taken and written in order,
// and the game lock is released before storage I/O.
func (m *Manager) Save(ctx context.Context, s *Session) (economy.Snapshot, error) {
	if m.Saves == nil {
		return economy.Snapshot{}, ports.ErrUnavailable
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var snap economy.Snapshot
	s.View(func(g *economy.Game) { snap = g.MarkSaved(m.now()) })

	err := m.write(ctx, s, snap)
	if errors.Is(err, ports.ErrConflict) && !s.degraded {
		if m.Metrics != nil {
			m.Metrics.RecordConflict()
		}
		// Another writer got in first; this session holds the newer state.
		cur, getErr := m.Saves.GetByPlayerID(ctx, s.PlayerID)
		switch {
		case getErr == nil:
			s.version = cur.Version
		case errors.Is(getErr, ports.ErrNotFound):
			s.version = 0
		default:
			err = getErr
		}
		if getErr == nil || errors.Is(getErr, ports.ErrNotFound) {
			err = m.write(ctx, s, snap)
		}
	}
	if m.Metrics != nil {
		m.Metrics.RecordSave(err == nil)
	}
	if err != nil {
		return economy.Snapshot{}, fmt.Errorf("save %s: %w", s.PlayerID, err)
	}
	return snap, nil
}

func (m *Manager) write(ctx context.Context, s *Session, snap economy.Snapshot) error {
	next := s.version + 1
	err := m.Saves.SaveWithVersion(ctx, ports.SaveRecord{
		PlayerID:  s.PlayerID,
		Snapshot:  snap,
		Version:   next,
		UpdatedAt: m.now().UTC(),
	}, s.version)
	if err != nil {
		return err
	}
	s.version = next
	s.degraded = false
	return nil
}

// Close stops the session's loop, writes a final save and forgets it.
// Closing a player with no open session is a no-op.
func (m *Manager) Close(ctx context.Context, playerID string) error {
	_, err := m.close(ctx, playerID, time.Time{})
	return err
}

// close removes the session unless idleBefore is set and the session was used
// at or after it. It reports whether the session was closed.
func (m *Manager) close(ctx context.Context, playerID string, idleBefore time.Time) (bool, error) {
	m.mu.Lock()
	s, ok := m.sessions[playerID]
	if !ok || (!idleBefore.IsZero() && !s.LastUsed().Before(idleBefore)) {
		m.mu.Unlock()
		return false, nil
	}
	delete(m.sessions, playerID)
	done := make(chan struct{})
	if m.closing == nil {
		m.closing = map[string]chan struct{}{}
	}
	m.closing[playerID] = done
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.closing, playerID)
		m.mu.Unlock()
		close(done)
	}()

	s.StopLoop()
	if m.Saves == nil {
		return true, nil
	}
	_, err := m.Save(ctx, s)
	return true, err
}

// CloseIdle closes every session that nobody opened within IdleTTL and
// returns the closed player ids.
func (m *Manager) CloseIdle(ctx context.Context) ([]string, error) {
	if m.IdleTTL <= 0 {
		return nil, nil
	}
	cutoff := m.now().Add(-m.IdleTTL)
	m.mu.Lock()
	var candidates []string
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			candidates = append(candidates, id)
		}
	}
	m.mu.Unlock()

	var closed []string
	var errs []error
	for _, id := range candidates {
		ok, err := m.close(ctx, id, cutoff)
		if ok {
			closed = append(closed, id)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return closed, errors.Join(errs...)
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every open session and joins their save errors.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AppendEvents records events without failing the caller; event history is
// best effort.
func (m *Manager) AppendEvents(ctx context.Context, playerID string, events []economy.DomainEvent) {
	if m.Events == nil || len(events) == 0 {
		return
	}
	if err := m.Events.Append(ctx, playerID, events); err != nil {
		hlog.CtxWarnf(ctx, "player %s: append %d events: %v", playerID, len(events), err)
	}
}
