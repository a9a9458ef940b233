package tick

import (
	"context"
	"errors"
	"strings"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/app/session"
	"sodaclicker/internal/domain/economy"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var ErrInvalidRequest = errors.New("invalid tick request")

type Request struct {
	PlayerID string
}

type Response struct {
	economy.TickResult
	Saved bool `json:"saved"`
}

type UseCase struct {
	Sessions *session.Manager
	Metrics  ports.EconomyMetrics
	Now      func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" || u.Sessions == nil {
		return Response{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	sess, err := u.Sessions.Open(ctx, req.PlayerID)
	if err != nil {
		return Response{}, err
	}
	return u.TickSession(ctx, sess, nowFn())
}

// TickSession runs one drink tick and writes an autosave when it falls due.
// A failed autosave is logged and retried at the next interval.
func (u UseCase) TickSession(ctx context.Context, sess *session.Session, now time.Time) (Response, error) {
	var res economy.TickResult
	_ = sess.Do(func(g *economy.Game) error {
		res = g.Tick(now)
		return nil
	})
	if res.DrinkCompleted && u.Metrics != nil {
		u.Metrics.RecordDrink()
	}
	out := Response{TickResult: res}
	if res.AutosaveDue {
		if _, err := u.Sessions.Save(ctx, sess); err != nil {
			hlog.CtxWarnf(ctx, "player %s: autosave failed: %v", sess.PlayerID, err)
		} else {
			out.Saved = true
		}
	}
	return out, nil
}

// Frame adapts TickSession to a drink loop frame.
func (u UseCase) Frame(sess *session.Session) func(ctx context.Context, now time.Time) error {
	return func(ctx context.Context, now time.Time) error {
		_, err := u.TickSession(ctx, sess, now)
		return err
	}
}
