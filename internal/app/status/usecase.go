package status

import (
	"context"
	"errors"
	"strings"
	"time"

	"sodaclicker/internal/app/session"
	"sodaclicker/internal/app/stateview"
	"sodaclicker/internal/domain/economy"
)

var ErrInvalidRequest = errors.New("invalid status request")

// UseCase builds the read-only view polled by the display layer. It never
// mutates the game.
type UseCase struct {
	Sessions *session.Manager
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

	now := nowFn()
	out := Response{PlayerID: req.PlayerID, Degraded: sess.Degraded()}
	sess.View(func(g *economy.Game) {
		s := g.State
		out.Sips = s.Sips
		out.SipsDisplay = s.Sips.Display()
		out.SipsPerDrink = s.SipsPerDrink
		out.SipsPerSecond = s.SipsPerSecond
		out.SipsPerSecondDisplay = s.SipsPerSecond.Display()
		out.DrinkRateMs = s.DrinkRate.Milliseconds()
		out.DrinkProgress = g.Progress(now)
		out.Level = s.Level
		out.ClickValue = g.ClickValue()
		out.CriticalChance = s.CriticalClickChance
		out.CriticalMultiplier = s.CriticalClickMultiplier
		out.Counts = Counts{
			Straws:         s.Straws,
			Cups:           s.Cups,
			Suctions:       s.Suctions,
			FasterDrinks:   s.FasterDrinks,
			WiderStraws:    s.WiderStraws,
			BetterCups:     s.BetterCups,
			CriticalClicks: s.CriticalClicks,
		}
		out.Offers = g.Offers()
		out.Waits = stateview.EstimateWaits(out.Offers, s.Sips, s.SipsPerSecond)
		out.Stats = g.Stats(now)
		out.LastSaveTime = economy.MillisOf(s.LastSaveTime)
	})
	return out, nil
}
