package inmemory

import "testing"

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordClick(false)
	r.RecordClick(true)
	r.RecordPurchase("straw", true)
	r.RecordPurchase("straw", true)
	r.RecordPurchase("cup", false)
	r.RecordDrink()
	r.RecordTickFailure()
	r.RecordSave(true)
	r.RecordSave(false)
	r.RecordConflict()

	s := r.Snapshot()
	if s.ClickTotal != 2 || s.CriticalClicks != 1 {
		t.Fatalf("unexpected click counters: %+v", s)
	}
	if s.PurchaseTotal != 3 || s.PurchaseSuccess != 2 || s.PurchaseRefused != 1 {
		t.Fatalf("unexpected purchase counters: %+v", s)
	}
	if s.PurchasesByType["straw"] != 2 || s.PurchasesByType["cup"] != 0 {
		t.Fatalf("unexpected per-upgrade counters: %+v", s.PurchasesByType)
	}
	if s.Drinks != 1 || s.TickFailures != 1 || s.SaveSuccess != 1 || s.SaveFailure != 1 || s.StorageConflicts != 1 {
		t.Fatalf("unexpected loop counters: %+v", s)
	}
}

func TestRecorderSnapshotIsCopy(t *testing.T) {
	r := NewRecorder()
	r.RecordPurchase("straw", true)
	s := r.Snapshot()
	s.PurchasesByType["straw"] = 99
	if r.Snapshot().PurchasesByType["straw"] != 1 {
		t.Fatal("snapshot map aliases recorder state")
	}
}
