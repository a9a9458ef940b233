package memory

import (
	"context"

	"sodaclicker/internal/app/ports"
)

type SaveRepo struct {
	store *Store
}

func NewSaveRepo(store *Store) SaveRepo {
	return SaveRepo{store: store}
}

func (r SaveRepo) GetByPlayerID(_ context.Context, playerID string) (ports.SaveRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.saves[playerID]
	if !ok {
		return ports.SaveRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (r SaveRepo) SaveWithVersion(_ context.Context, rec ports.SaveRecord, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.saves[rec.PlayerID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.saves[rec.PlayerID] = rec
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.saves[rec.PlayerID] = rec
	return nil
}
