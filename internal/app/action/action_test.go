package action

import (
	"context"
	"testing"
	"time"

	"sodaclicker/internal/adapter/repo/memory"
	"sodaclicker/internal/app/session"
	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	sessions *session.Manager
	metrics  *countingMetrics
}

type countingMetrics struct {
	clicks, crits, bought, refused, conflicts int
}

func (m *countingMetrics) RecordClick(critical bool) {
	m.clicks++
	if critical {
		m.crits++
	}
}

func (m *countingMetrics) RecordPurchase(_ string, success bool) {
	if success {
		m.bought++
	} else {
		m.refused++
	}
}
func (m *countingMetrics) RecordDrink()       {}
func (m *countingMetrics) RecordTickFailure() {}
func (m *countingMetrics) RecordSave(bool)    {}
func (m *countingMetrics) RecordConflict()    { m.conflicts++ }

func newFixture() fixture {
	store := memory.NewStore()
	mgr := session.NewManager(economy.DefaultBalance(), memory.NewSaveRepo(store))
	mgr.Events = memory.NewEventRepo(store)
	mgr.Now = func() time.Time { return t0 }
	return fixture{store: store, sessions: mgr, metrics: &countingMetrics{}}
}

func (f fixture) give(t *testing.T, playerID string, sips int64) {
	t.Helper()
	s, err := f.sessions.Open(context.Background(), playerID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Do(func(g *economy.Game) error {
		g.State.Sips = amount.FromInt(sips)
		return nil
	})
}

func TestClickUseCase_CreditsClickValue(t *testing.T) {
	f := newFixture()
	uc := ClickUseCase{
		Sessions: f.sessions,
		Roller:   economy.RollerFunc(func() float64 { return 0 }),
		Metrics:  f.metrics,
		Now:      func() time.Time { return t0 },
	}

	resp, err := uc.Execute(context.Background(), ClickRequest{PlayerID: "p1", X: 10, Y: 20})
	if err != nil {
		t.Fatalf("click error: %v", err)
	}
	if !resp.Critical || !resp.Value.Equal(amount.FromInt(5)) || resp.Display != "5" {
		t.Fatalf("unexpected click response: %+v", resp)
	}
	if resp.X != 10 || resp.Y != 20 {
		t.Fatalf("click position not echoed: %+v", resp)
	}
	if f.metrics.clicks != 1 || f.metrics.crits != 1 {
		t.Fatalf("unexpected metrics: %+v", f.metrics)
	}
	events, _ := memory.NewEventRepo(f.store).ListByPlayerID(context.Background(), "p1", 10)
	if len(events) != 1 || events[0].Type != economy.EventCriticalClick {
		t.Fatalf("expected critical click event, got %+v", events)
	}
}

func TestClickUseCase_RejectsMissingPlayer(t *testing.T) {
	f := newFixture()
	if _, err := (ClickUseCase{Sessions: f.sessions}).Execute(context.Background(), ClickRequest{}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPurchaseUseCase_BuysAndRefuses(t *testing.T) {
	f := newFixture()
	f.give(t, "p1", 15)
	uc := PurchaseUseCase{Sessions: f.sessions, Metrics: f.metrics}

	resp, err := uc.Execute(context.Background(), PurchaseRequest{PlayerID: "p1", Upgrade: economy.UpgradeStraw})
	if err != nil {
		t.Fatalf("purchase error: %v", err)
	}
	if !resp.Success || !resp.Sips.Equal(amount.FromInt(5)) || !resp.NextCost.Equal(amount.FromInt(11)) {
		t.Fatalf("unexpected purchase: %+v", resp)
	}

	resp, err = uc.Execute(context.Background(), PurchaseRequest{PlayerID: "p1", Upgrade: economy.UpgradeStraw})
	if err != nil {
		t.Fatalf("refused purchase must not error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected refusal: %+v", resp)
	}
	if f.metrics.bought != 1 || f.metrics.refused != 1 {
		t.Fatalf("unexpected metrics: %+v", f.metrics)
	}
}

func TestPurchaseUseCase_UnknownUpgrade(t *testing.T) {
	f := newFixture()
	_, err := (PurchaseUseCase{Sessions: f.sessions}).Execute(context.Background(), PurchaseRequest{PlayerID: "p1", Upgrade: "rocket"})
	if err != economy.ErrUnknownUpgrade {
		t.Fatalf("expected ErrUnknownUpgrade, got %v", err)
	}
}

func TestPurchaseUseCase_IdempotencyKeyReplaysResult(t *testing.T) {
	f := newFixture()
	f.give(t, "p1", 100)
	uc := PurchaseUseCase{
		Sessions:   f.sessions,
		Executions: memory.NewPurchaseExecutionRepo(f.store),
		Metrics:    f.metrics,
		Now:        func() time.Time { return t0 },
	}
	req := PurchaseRequest{PlayerID: "p1", Upgrade: economy.UpgradeCup, IdempotencyKey: "buy-1"}

	first, err := uc.Execute(context.Background(), req)
	if err != nil || !first.Success {
		t.Fatalf("first purchase: %+v err=%v", first, err)
	}
	second, err := uc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if !second.Replayed || !second.NewCount.Equal(first.NewCount) {
		t.Fatalf("expected replayed result, got %+v", second)
	}

	s, _ := f.sessions.Get("p1")
	s.View(func(g *economy.Game) {
		if !g.State.Cups.Equal(amount.One) || !g.State.Sips.Equal(amount.FromInt(80)) {
			t.Fatalf("cup bought twice: cups=%s sips=%s", g.State.Cups, g.State.Sips)
		}
	})
	if f.metrics.bought != 1 {
		t.Fatalf("replay counted as purchase: %+v", f.metrics)
	}
}

func TestPurchaseUseCase_RefusalIsNotRemembered(t *testing.T) {
	f := newFixture()
	uc := PurchaseUseCase{Sessions: f.sessions, Executions: memory.NewPurchaseExecutionRepo(f.store)}
	req := PurchaseRequest{PlayerID: "p1", Upgrade: economy.UpgradeStraw, IdempotencyKey: "k"}

	if resp, _ := uc.Execute(context.Background(), req); resp.Success {
		t.Fatalf("purchase without sips succeeded: %+v", resp)
	}
	f.give(t, "p1", 10)
	resp, err := uc.Execute(context.Background(), req)
	if err != nil || !resp.Success || resp.Replayed {
		t.Fatalf("retry with sips: %+v err=%v", resp, err)
	}
}
