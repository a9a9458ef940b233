package action

import (
	"context"
	"errors"
	"strings"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/app/session"
	"sodaclicker/internal/domain/economy"
)

var ErrInvalidRequest = errors.New("invalid action request")

type ClickUseCase struct {
	Sessions *session.Manager
	Roller   economy.Roller
	Metrics  ports.EconomyMetrics
	Now      func() time.Time
}

func (u ClickUseCase) Execute(ctx context.Context, req ClickRequest) (ClickResponse, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" || u.Sessions == nil {
		return ClickResponse{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	sess, err := u.Sessions.Open(ctx, req.PlayerID)
	if err != nil {
		return ClickResponse{}, err
	}

	var res economy.ClickResult
	_ = sess.Do(func(g *economy.Game) error {
		res = g.CreditClick(economy.Click{At: nowFn(), X: req.X, Y: req.Y}, u.Roller)
		return nil
	})
	if u.Metrics != nil {
		u.Metrics.RecordClick(res.Critical)
	}
	u.Sessions.AppendEvents(ctx, req.PlayerID, res.Events)

	return ClickResponse{
		Value:       res.Value,
		Display:     res.Value.Display(),
		Critical:    res.Critical,
		Sips:        res.Sips,
		TotalClicks: res.TotalClicks,
		X:           res.X,
		Y:           res.Y,
		Events:      res.Events,
	}, nil
}
