package action

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

type PurchaseUseCase struct {
	Sessions   *session.Manager
	Executions ports.PurchaseExecutionRepository
	Metrics    ports.EconomyMetrics
	Now        func() time.Time
}

// Execute buys one unit. With an idempotency key, a repeated request returns
// the first successful result instead of buying again. Refusals are never
// remembered, so the same key can succeed once sips suffice.
func (u PurchaseUseCase) Execute(ctx context.Context, req PurchaseRequest) (PurchaseResponse, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	req.Upgrade = economy.UpgradeID(strings.TrimSpace(string(req.Upgrade)))
	if req.PlayerID == "" || u.Sessions == nil {
		return PurchaseResponse{}, ErrInvalidRequest
	}
	if !economy.IsKnownUpgrade(req.Upgrade) {
		return PurchaseResponse{}, economy.ErrUnknownUpgrade
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	sess, err := u.Sessions.Open(ctx, req.PlayerID)
	if err != nil {
		return PurchaseResponse{}, err
	}

	useKey := req.IdempotencyKey != "" && u.Executions != nil
	var out PurchaseResponse
	err = sess.Exclusive(func() error {
		if useKey {
			exec, err := u.Executions.GetByIdempotencyKey(ctx, req.PlayerID, req.IdempotencyKey)
			if err == nil && exec != nil {
				out = PurchaseResponse{PurchaseResult: exec.Result, Replayed: true}
				return nil
			}
			if err != nil && !errors.Is(err, ports.ErrNotFound) {
				return err
			}
		}

		err := sess.Do(func(g *economy.Game) error {
			res, err := g.Purchase(req.Upgrade, nowFn())
			if err != nil {
				return err
			}
			out = PurchaseResponse{PurchaseResult: res, SipsPerSecond: g.State.SipsPerSecond}
			return nil
		})
		if err != nil {
			return err
		}
		if useKey && out.Success {
			// The purchase is already applied; a lost record only weakens replay.
			if err := u.Executions.SaveExecution(ctx, ports.PurchaseExecutionRecord{
				PlayerID:       req.PlayerID,
				IdempotencyKey: req.IdempotencyKey,
				Upgrade:        string(req.Upgrade),
				Result:         out.PurchaseResult,
				AppliedAt:      nowFn().UTC(),
			}); err != nil {
				hlog.CtxWarnf(ctx, "player %s: record purchase %s: %v", req.PlayerID, req.IdempotencyKey, err)
			}
		}
		return nil
	})
	if err != nil {
		if u.Metrics != nil && errors.Is(err, ports.ErrConflict) {
			u.Metrics.RecordConflict()
		}
		return PurchaseResponse{}, err
	}
	if u.Metrics != nil && !out.Replayed {
		u.Metrics.RecordPurchase(string(req.Upgrade), out.Success)
	}
	if !out.Replayed {
		u.Sessions.AppendEvents(ctx, req.PlayerID, out.Events)
	}
	return out, nil
}
