package replay

import (
	"context"
	"testing"
	"time"

	"sodaclicker/internal/adapter/repo/memory"
	"sodaclicker/internal/domain/economy"
)

func TestUseCase_SummarizesNewestFirst(t *testing.T) {
	repo := memory.NewEventRepo(memory.NewStore())
	base := time.Unix(1700000000, 0).UTC()
	_ = repo.Append(context.Background(), "p1", []economy.DomainEvent{
		{Type: economy.EventPurchaseCompleted, OccurredAt: base, Payload: map[string]any{"upgrade": "straw"}},
		{Type: economy.EventPurchaseCompleted, OccurredAt: base.Add(time.Second), Payload: map[string]any{"upgrade": "level_up"}},
		{Type: economy.EventLevelUp, OccurredAt: base.Add(time.Second), Payload: map[string]any{"level_after": "2"}},
		{Type: economy.EventPurchaseCompleted, OccurredAt: base.Add(2 * time.Second), Payload: map[string]any{"upgrade": "level_up"}},
		{Type: economy.EventLevelUp, OccurredAt: base.Add(2 * time.Second), Payload: map[string]any{"level_after": "3"}},
		{Type: economy.EventCriticalClick, OccurredAt: base.Add(3 * time.Second)},
	})

	resp, err := UseCase{Events: repo}.Execute(context.Background(), Request{PlayerID: "p1"})
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if len(resp.Events) != 6 || resp.Events[0].Type != economy.EventCriticalClick {
		t.Fatalf("unexpected events: %+v", resp.Events)
	}
	s := resp.Summary
	if s.Purchases["straw"] != 1 || s.Purchases["level_up"] != 2 || s.LevelUps != 2 || s.CriticalClicks != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.LatestLevel != "3" {
		t.Fatalf("latest level = %q, want 3", s.LatestLevel)
	}
}

func TestUseCase_FiltersByOccurredTimeWindow(t *testing.T) {
	repo := memory.NewEventRepo(memory.NewStore())
	base := time.Unix(1700000000, 0).UTC()
	for i := 0; i < 5; i++ {
		_ = repo.Append(context.Background(), "p1", []economy.DomainEvent{{
			Type:       economy.EventGameSaved,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}})
	}
	resp, err := UseCase{Events: repo}.Execute(context.Background(), Request{
		PlayerID:     "p1",
		OccurredFrom: base.Add(time.Minute).Unix(),
		OccurredTo:   base.Add(3 * time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if len(resp.Events) != 3 || resp.Summary.Saves != 3 {
		t.Fatalf("expected 3 events in window, got %d", len(resp.Events))
	}
}

func TestUseCase_RejectsInvertedWindow(t *testing.T) {
	repo := memory.NewEventRepo(memory.NewStore())
	_, err := UseCase{Events: repo}.Execute(context.Background(), Request{PlayerID: "p1", OccurredFrom: 10, OccurredTo: 5})
	if err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
