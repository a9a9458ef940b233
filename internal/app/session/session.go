package session

import (
	"sync"
	"sync/atomic"
	"time"

	"sodaclicker/internal/domain/economy"
)

// Loop is the part of a drink loop a session controls.
type Loop interface {
	Stop()
}

// Session serializes every read and write of one player's game.
type Session struct {
	PlayerID string

	mu   sync.Mutex
	game *economy.Game

	// saveMu orders snapshot writes; it is never held together with mu
	// across storage I/O.
	saveMu   sync.Mutex
	version  int64
	degraded bool

	// opMu orders multi-step operations that touch storage between game
	// mutations, such as idempotent purchases.
	opMu sync.Mutex

	loopMu sync.Mutex
	loop   Loop

	// lastUsed is unix nanoseconds of the last Open that returned this session.
	lastUsed atomic.Int64
}

func newSession(playerID string, g *economy.Game, version int64, degraded bool) *Session {
	return &Session{PlayerID: playerID, game: g, version: version, degraded: degraded}
}

// Do runs fn with exclusive access to the game. fn must not block on I/O.
func (s *Session) Do(fn func(g *economy.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// View runs fn with exclusive access; fn must not keep the game.
func (s *Session) View(fn func(g *economy.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// Exclusive runs fn while no other Exclusive call for this session runs.
// Ticks and clicks are not blocked by it.
func (s *Session) Exclusive(fn func() error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return fn()
}

// Degraded reports whether the session started from defaults because the
// save store could not be reached.
func (s *Session) Degraded() bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.degraded
}

func (s *Session) Version() int64 {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.version
}

func (s *Session) touch(t time.Time) { s.lastUsed.Store(t.UnixNano()) }

// LastUsed is when a caller last opened the session. The drink loop does not
// count.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.lastUsed.Load()).UTC() }

// AttachLoop stops any loop already attached and keeps l for StopLoop.
func (s *Session) AttachLoop(l Loop) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.loop != nil {
		s.loop.Stop()
	}
	s.loop = l
}

func (s *Session) StopLoop() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.loop != nil {
		s.loop.Stop()
		s.loop = nil
	}
}
