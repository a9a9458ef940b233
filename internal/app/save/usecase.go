package save

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sodaclicker/internal/app/session"
	"sodaclicker/internal/domain/economy"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var (
	ErrInvalidRequest  = errors.New("invalid save request")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

type Request struct {
	PlayerID string
}

type Response struct {
	Snapshot economy.Snapshot `json:"snapshot"`
	Version  int64            `json:"version"`
}

type ImportRequest struct {
	PlayerID string
	Raw      []byte
}

type ImportResponse struct {
	Snapshot economy.Snapshot `json:"snapshot"`
	Repaired []string         `json:"repaired"`
	Version  int64            `json:"version"`
}

func openSession(ctx context.Context, sessions *session.Manager, playerID string) (*session.Session, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" || sessions == nil {
		return nil, ErrInvalidRequest
	}
	return sessions.Open(ctx, playerID)
}

func nowOr(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}

// SaveUseCase writes the whole current state as one snapshot.
type SaveUseCase struct {
	Sessions *session.Manager
	Now      func() time.Time
}

func (u SaveUseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sess, err := openSession(ctx, u.Sessions, req.PlayerID)
	if err != nil {
		return Response{}, err
	}
	snap, err := u.Sessions.Save(ctx, sess)
	if err != nil {
		return Response{}, err
	}
	u.Sessions.AppendEvents(ctx, sess.PlayerID, []economy.DomainEvent{{
		Type:       economy.EventGameSaved,
		OccurredAt: snap.LastSaveTime.Time(),
		Payload:    map[string]any{"version": sess.Version()},
	}})
	return Response{Snapshot: snap, Version: sess.Version()}, nil
}

// ExportUseCase returns the current snapshot without writing it.
type ExportUseCase struct {
	Sessions *session.Manager
}

func (u ExportUseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sess, err := openSession(ctx, u.Sessions, req.PlayerID)
	if err != nil {
		return Response{}, err
	}
	var snap economy.Snapshot
	sess.View(func(g *economy.Game) { snap = g.Snapshot() })
	return Response{Snapshot: snap, Version: sess.Version()}, nil
}

// ImportUseCase replaces the whole state with a raw save. Bad fields are
// repaired to defaults; only a document that is not a JSON object is refused.
type ImportUseCase struct {
	Sessions *session.Manager
	Now      func() time.Time
}

func (u ImportUseCase) Execute(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	sess, err := openSession(ctx, u.Sessions, req.PlayerID)
	if err != nil {
		return ImportResponse{}, err
	}
	snap, err := economy.ParseSnapshot(req.Raw)
	if err != nil {
		return ImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	now := nowOr(u.Now)
	var repaired []string
	_ = sess.Do(func(g *economy.Game) error {
		repaired = g.Load(snap, now)
		return nil
	})
	if len(repaired) > 0 {
		hlog.CtxInfof(ctx, "player %s: imported save repaired fields %v", sess.PlayerID, repaired)
	}
	saved, err := u.Sessions.Save(ctx, sess)
	if err != nil {
		return ImportResponse{}, err
	}
	u.Sessions.AppendEvents(ctx, sess.PlayerID, []economy.DomainEvent{{
		Type:       economy.EventGameLoaded,
		OccurredAt: now.UTC(),
		Payload:    map[string]any{"repaired": repaired},
	}})
	return ImportResponse{Snapshot: saved, Repaired: repaired, Version: sess.Version()}, nil
}

// ResetUseCase discards all progress and persists the fresh game.
type ResetUseCase struct {
	Sessions *session.Manager
	Now      func() time.Time
}

func (u ResetUseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sess, err := openSession(ctx, u.Sessions, req.PlayerID)
	if err != nil {
		return Response{}, err
	}
	var ev economy.DomainEvent
	_ = sess.Do(func(g *economy.Game) error {
		ev = g.Reset(nowOr(u.Now))
		return nil
	})
	snap, err := u.Sessions.Save(ctx, sess)
	if err != nil {
		return Response{}, err
	}
	u.Sessions.AppendEvents(ctx, sess.PlayerID, []economy.DomainEvent{ev})
	return Response{Snapshot: snap, Version: sess.Version()}, nil
}

type CloseResponse struct {
	Closed bool `json:"closed"`
}

// CloseUseCase stops the player's drink loop and writes a final save. The
// next request for the player loads the game again.
type CloseUseCase struct {
	Sessions *session.Manager
}

func (u CloseUseCase) Execute(ctx context.Context, req Request) (CloseResponse, error) {
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" || u.Sessions == nil {
		return CloseResponse{}, ErrInvalidRequest
	}
	if _, ok := u.Sessions.Get(playerID); !ok {
		return CloseResponse{Closed: false}, nil
	}
	if err := u.Sessions.Close(ctx, playerID); err != nil {
		return CloseResponse{}, err
	}
	return CloseResponse{Closed: true}, nil
}
