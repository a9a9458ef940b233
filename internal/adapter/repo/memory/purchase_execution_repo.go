package memory

import (
	"context"

	"sodaclicker/internal/app/ports"
)

type PurchaseExecutionRepo struct {
	store *Store
}

func NewPurchaseExecutionRepo(store *Store) PurchaseExecutionRepo {
	return PurchaseExecutionRepo{store: store}
}

func (r PurchaseExecutionRepo) GetByIdempotencyKey(_ context.Context, playerID, key string) (*ports.PurchaseExecutionRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.execution[execKey(playerID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := rec
	return &copy, nil
}

func (r PurchaseExecutionRepo) SaveExecution(_ context.Context, execution ports.PurchaseExecutionRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := execKey(execution.PlayerID, execution.IdempotencyKey)
	if _, exists := r.store.execution[k]; exists {
		return ports.ErrConflict
	}
	r.store.execution[k] = execution
	return nil
}
