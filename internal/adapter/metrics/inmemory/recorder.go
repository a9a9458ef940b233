package inmemory

import "sync"

type Snapshot struct {
	ClickTotal       uint64            `json:"click_total"`
	CriticalClicks   uint64            `json:"critical_clicks"`
	PurchaseTotal    uint64            `json:"purchase_total"`
	PurchaseSuccess  uint64            `json:"purchase_success"`
	PurchaseRefused  uint64            `json:"purchase_refused"`
	PurchasesByType  map[string]uint64 `json:"purchases_by_upgrade"`
	Drinks           uint64            `json:"drinks"`
	TickFailures     uint64            `json:"tick_failures"`
	SaveSuccess      uint64            `json:"save_success"`
	SaveFailure      uint64            `json:"save_failure"`
	StorageConflicts uint64            `json:"storage_conflicts"`
}

type Recorder struct {
	mu         sync.Mutex
	clicks     uint64
	criticals  uint64
	bought     uint64
	refused    uint64
	byUpgrade  map[string]uint64
	drinks     uint64
	tickFails  uint64
	saveOK     uint64
	saveFailed uint64
	conflicts  uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byUpgrade: map[string]uint64{},
	}
}

func (r *Recorder) RecordClick(critical bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clicks++
	if critical {
		r.criticals++
	}
}

func (r *Recorder) RecordPurchase(upgrade string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !success {
		r.refused++
		return
	}
	r.bought++
	r.byUpgrade[upgrade]++
}

func (r *Recorder) RecordDrink() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drinks++
}

func (r *Recorder) RecordTickFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickFails++
}

func (r *Recorder) RecordSave(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.saveOK++
	} else {
		r.saveFailed++
	}
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ClickTotal:       r.clicks,
		CriticalClicks:   r.criticals,
		PurchaseSuccess:  r.bought,
		PurchaseRefused:  r.refused,
		PurchaseTotal:    r.bought + r.refused,
		PurchasesByType:  make(map[string]uint64, len(r.byUpgrade)),
		Drinks:           r.drinks,
		TickFailures:     r.tickFails,
		SaveSuccess:      r.saveOK,
		SaveFailure:      r.saveFailed,
		StorageConflicts: r.conflicts,
	}
	for k, v := range r.byUpgrade {
		out.PurchasesByType[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
